package websockets

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/caronaexpress/pkg/events"
	"github.com/chris/caronaexpress/pkg/models"
)

// RideReader loads a ride.
type RideReader interface {
	GetRide(ctx context.Context, rideID string) (*models.Ride, error)
}

// AccountReader loads an account.
type AccountReader interface {
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
}

// EventPublisher turns domain events into client messages: ride events are
// broadcast as rideUpdate, and every account an event touched gets a
// balanceUpdate with its current balance.
type EventPublisher struct {
	publisher Publisher
	rides     RideReader
	accounts  AccountReader
}

// NewEventPublisher creates an EventPublisher.
func NewEventPublisher(publisher Publisher, rides RideReader, accounts AccountReader) *EventPublisher {
	return &EventPublisher{publisher: publisher, rides: rides, accounts: accounts}
}

var _ events.Publisher = (*EventPublisher)(nil)

func (p *EventPublisher) Publish(ctx context.Context, e events.Event) error {
	var errs []error

	switch e.Type {
	case events.RideCreated, events.RideAccepted, events.RideClosed:
		if err := p.publishRide(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}

	switch e.Type {
	case events.RideAccepted, events.TransferCompleted, events.DepositCredited:
		for _, accountID := range e.AccountIDs {
			if err := p.publishBalance(ctx, accountID, string(e.Type)); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

func (p *EventPublisher) publishRide(ctx context.Context, e events.Event) error {
	r, err := p.rides.GetRide(ctx, e.RideID)
	if err != nil {
		return fmt.Errorf("failed to load ride %s: %w", e.RideID, err)
	}
	return p.publisher.Publish(ctx, Message{
		Type: MessageTypeRideUpdate,
		Payload: RideUpdatePayload{
			RideID:         r.ID,
			Event:          string(e.Type),
			Status:         r.Status,
			PassengerCount: len(r.Passengers),
			SeatsTotal:     r.SeatsTotal,
			Full:           r.IsFull(),
		},
	})
}

func (p *EventPublisher) publishBalance(ctx context.Context, accountID, reason string) error {
	acct, err := p.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	return p.publisher.Publish(ctx, Message{
		Type:    MessageTypeBalanceUpdate,
		Payload: BalanceUpdatePayload{AccountID: acct.UserID, Reason: reason, Balance: acct.Balance},
	}, accountID)
}
