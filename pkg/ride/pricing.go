package ride

import (
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/shopspring/decimal"
)

var (
	carEfficiencyKmPerLitre = decimal.NewFromInt(10)
	fuelPricePerLitre       = decimal.RequireFromString("6.85")
	margin                  = decimal.RequireFromString("1.2")
)

// SuggestedPrice is the fuel cost of the trip plus a margin, rounded to cents.
// Drivers may set any positive price.
func SuggestedPrice(distanceKm float64) models.Money {
	litres := decimal.NewFromFloat(distanceKm).Div(carEfficiencyKmPerLitre)
	return models.Money{Decimal: litres.Mul(fuelPricePerLitre).Mul(margin).Round(2)}
}

// Quote is the distance and suggested price between two places.
type Quote struct {
	Origin         string
	Destination    string
	DistanceKm     float64
	SuggestedPrice models.Money
}

// NewQuote resolves the distance through locator and prices it.
func NewQuote(locator Locator, origin, destination string) (*Quote, error) {
	km, err := locator.Distance(origin, destination)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Origin:         origin,
		Destination:    destination,
		DistanceKm:     km,
		SuggestedPrice: SuggestedPrice(km),
	}, nil
}
