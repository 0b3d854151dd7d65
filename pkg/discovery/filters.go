package discovery

import (
	"math"
	"strconv"
	"strings"

	"github.com/chris/caronaexpress/pkg/models"
)

// Filters narrows a search. The zero value matches every ACTIVE ride.
type Filters struct {
	// Destination matches any ride whose destination contains it, ignoring case.
	Destination string
	// Date and Time match the ride's DD/MM/YYYY date and HH:MM time exactly.
	Date string
	Time string

	PriceMin    *models.Money
	PriceMax    *models.Money
	DistanceMin *float64
	DistanceMax *float64
}

// RawFilters is search input as typed by a user.
type RawFilters struct {
	Destination string
	Date        string
	Time        string
	PriceMin    string
	PriceMax    string
	DistanceMin string
	DistanceMax string
}

// ParseFilters converts raw input. Numbers that do not parse are dropped
// rather than reported; a comma works as decimal separator.
func ParseFilters(raw RawFilters) Filters {
	return Filters{
		Destination: strings.TrimSpace(raw.Destination),
		Date:        strings.TrimSpace(raw.Date),
		Time:        strings.TrimSpace(raw.Time),
		PriceMin:    parseMoney(raw.PriceMin),
		PriceMax:    parseMoney(raw.PriceMax),
		DistanceMin: parseFloat(raw.DistanceMin),
		DistanceMax: parseFloat(raw.DistanceMax),
	}
}

func parseMoney(s string) *models.Money {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	m, err := models.ParseMoney(s)
	if err != nil {
		return nil
	}
	return &m
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Match reports whether r is ACTIVE and satisfies every filter.
func (f Filters) Match(r *models.Ride) bool {
	if r.Status != models.RideActive {
		return false
	}
	if f.Destination != "" && !strings.Contains(strings.ToLower(r.Destination), strings.ToLower(f.Destination)) {
		return false
	}
	if f.Date != "" && r.Date != f.Date {
		return false
	}
	if f.Time != "" && r.Time != f.Time {
		return false
	}
	if f.PriceMin != nil && r.PricePerSeat.Below(*f.PriceMin) {
		return false
	}
	if f.PriceMax != nil && f.PriceMax.Below(r.PricePerSeat) {
		return false
	}
	if f.DistanceMin != nil && r.DistanceKm < *f.DistanceMin {
		return false
	}
	if f.DistanceMax != nil && r.DistanceKm > *f.DistanceMax {
		return false
	}
	return true
}
