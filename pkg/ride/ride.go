// Package ride defines ride offerings: how they are validated and created,
// priced, listed and closed.
package ride

import (
	"errors"
	"strings"
	"time"

	"github.com/chris/caronaexpress/pkg/geo"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/google/uuid"
)

// Field names reported in a ValidationError.
const (
	FieldOrigin       = "origin"
	FieldDestination  = "destination"
	FieldDate         = "date"
	FieldTime         = "time"
	FieldVehicle      = "vehicle"
	FieldSeatsTotal   = "seats_total"
	FieldPricePerSeat = "price_per_seat"
)

// UnknownDriverName is shown when the identity provider gave no display name.
const UnknownDriverName = "Motorista Desconhecido"

const (
	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

// Locator resolves the distance between two named places.
type Locator interface {
	Distance(origin, destination string) (float64, error)
}

// Driver is the authenticated user offering the ride.
type Driver struct {
	AccountID   string
	DisplayName string
}

// Offer is the driver's input for a new ride. Price is a decimal string and
// may use a comma as separator.
type Offer struct {
	Origin      string
	Destination string
	Date        string
	Time        string
	Vehicle     string
	SeatsTotal  int
	Price       string
}

// New validates the offer and builds an ACTIVE ride with an empty roster.
// Every problem is reported at once in a *ValidationError.
func New(driver Driver, offer Offer, locator Locator, now time.Time) (*models.Ride, error) {
	verr := &ValidationError{}

	origin := strings.TrimSpace(offer.Origin)
	destination := strings.TrimSpace(offer.Destination)
	date := strings.TrimSpace(offer.Date)
	clock := strings.TrimSpace(offer.Time)
	vehicle := strings.TrimSpace(offer.Vehicle)

	if origin == "" {
		verr.add(FieldOrigin, "required")
	}
	if destination == "" {
		verr.add(FieldDestination, "required")
	}
	switch {
	case date == "":
		verr.add(FieldDate, "required")
	case !validLayout(dateLayout, date):
		verr.add(FieldDate, "must be DD/MM/YYYY")
	}
	switch {
	case clock == "":
		verr.add(FieldTime, "required")
	case !validLayout(timeLayout, clock):
		verr.add(FieldTime, "must be HH:MM")
	}
	if vehicle == "" {
		verr.add(FieldVehicle, "required")
	}
	if offer.SeatsTotal <= 0 {
		verr.add(FieldSeatsTotal, "must be a positive integer")
	}

	var price models.Money
	if strings.TrimSpace(offer.Price) == "" {
		verr.add(FieldPricePerSeat, "required")
	} else if p, err := models.ParseMoney(offer.Price); err != nil || !p.Round(2).IsPositive() {
		verr.add(FieldPricePerSeat, "must be a positive decimal")
	} else {
		price = models.Money{Decimal: p.Round(2)}
	}

	var distance float64
	if origin != "" && destination != "" {
		if strings.EqualFold(origin, destination) {
			verr.add(FieldDestination, "must differ from origin")
		} else if d, err := locator.Distance(origin, destination); err != nil {
			if !errors.Is(err, geo.ErrUnknownLocation) {
				return nil, err
			}
			for field, place := range map[string]string{FieldOrigin: origin, FieldDestination: destination} {
				if !known(locator, place) {
					verr.add(field, "unknown location")
				}
			}
			sortFields(verr)
		} else {
			distance = d
		}
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}

	driverName := strings.TrimSpace(driver.DisplayName)
	if driverName == "" {
		driverName = UnknownDriverName
	}

	return &models.Ride{
		ID:           uuid.NewString(),
		DriverID:     driver.AccountID,
		DriverName:   driverName,
		Origin:       origin,
		Destination:  destination,
		DistanceKm:   distance,
		Date:         date,
		Time:         clock,
		Vehicle:      vehicle,
		PricePerSeat: price,
		SeatsTotal:   offer.SeatsTotal,
		Passengers:   []models.Passenger{},
		Status:       models.RideActive,
		CreatedAt:    now.UTC(),
	}, nil
}

// DepartsAt parses the ride's date and time in loc.
func DepartsAt(r *models.Ride, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, r.Date+" "+r.Time, loc)
}

func validLayout(layout, value string) bool {
	_, err := time.Parse(layout, value)
	return err == nil
}

// known reports whether the locator recognizes place.
func known(locator Locator, place string) bool {
	_, err := locator.Distance(place, place)
	return err == nil
}
