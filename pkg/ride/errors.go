package ride

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrRideNotFound is returned when the ride does not exist.
	ErrRideNotFound = errors.New("ride not found")
	// ErrNotDriver is returned when someone other than the driver tries to change a ride.
	ErrNotDriver = errors.New("only the driver can change this ride")
	// ErrRideClosed is returned when closing a ride that is already closed.
	ErrRideClosed = errors.New("ride is closed")
)

// FieldError describes one invalid or missing input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return "invalid ride: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// fieldOrder is the order fields appear on the offer form.
var fieldOrder = map[string]int{
	FieldOrigin:       0,
	FieldDestination:  1,
	FieldDate:         2,
	FieldTime:         3,
	FieldVehicle:      4,
	FieldSeatsTotal:   5,
	FieldPricePerSeat: 6,
}

func sortFields(e *ValidationError) {
	sort.SliceStable(e.Fields, func(i, j int) bool {
		return fieldOrder[e.Fields[i].Field] < fieldOrder[e.Fields[j].Field]
	})
}
