package storage

import (
	"context"
	"iter"

	"github.com/chris/caronaexpress/pkg/models"
)

// RideStore defines the interface for ride records.
type RideStore interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	GetRide(ctx context.Context, rideID string) (*models.Ride, error)

	// ActiveRides yields every ride with status ACTIVE, newest first. Each call
	// reads the datastore again; nothing is cached between calls.
	ActiveRides(ctx context.Context) iter.Seq2[models.Ride, error]

	ListRidesByDriver(ctx context.Context, driverID string) ([]models.Ride, error)
	ListRidesByPassenger(ctx context.Context, accountID string) ([]models.Ride, error)

	// CloseRide sets the ride's status to CLOSED if it is still ACTIVE at expectedVersion.
	CloseRide(ctx context.Context, rideID string, expectedVersion int64) error
}

// AcceptanceStore commits a seat claim together with its fare transfer.
type AcceptanceStore interface {
	// CommitAcceptance atomically appends the passenger to the ride, debits the
	// passenger and credits the driver. It fails with ErrConflict if the ride
	// changed since acceptance.Ride was read, ErrInsufficientFunds if the
	// passenger balance no longer covers the fare and ErrAccountNotFound if
	// either account is missing. On any error nothing is written.
	CommitAcceptance(ctx context.Context, acceptance *models.Acceptance) error
}
