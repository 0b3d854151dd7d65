package acceptance

import (
	"errors"

	"github.com/chris/caronaexpress/pkg/ledger"
	"github.com/chris/caronaexpress/pkg/ride"
)

var (
	ErrRideNotFound = ride.ErrRideNotFound
	// ErrRideClosed is returned when the ride is no longer ACTIVE.
	ErrRideClosed = ride.ErrRideClosed
	// ErrAlreadyAccepted is returned when the passenger already holds a seat on the ride.
	ErrAlreadyAccepted = errors.New("passenger already accepted this ride")
	// ErrRideFull is returned when every seat is taken.
	ErrRideFull = errors.New("ride is full")
	// ErrSelfAcceptance is returned when a driver tries to ride in their own offering.
	ErrSelfAcceptance = errors.New("drivers cannot accept their own ride")

	ErrInsufficientFunds = ledger.ErrInsufficientFunds
	ErrAccountNotFound   = ledger.ErrAccountNotFound
	ErrTransient         = ledger.ErrTransient
)
