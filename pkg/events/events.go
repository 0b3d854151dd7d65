// Package events carries notifications about committed state changes: durable
// domain events for downstream consumers, and lightweight change signals that
// wake up live discovery views.
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Type names a domain event.
type Type string

const (
	RideCreated       Type = "ride.created"
	RideAccepted      Type = "ride.accepted"
	RideClosed        Type = "ride.closed"
	TransferCompleted Type = "transfer.completed"
	DepositCredited   Type = "deposit.credited"
	DepositFailed     Type = "deposit.failed"
)

// Event describes something that already happened.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	RideID     string    `json:"ride_id,omitempty"`
	// AccountIDs lists the accounts whose balance or rides the event touched.
	AccountIDs []string `json:"account_ids,omitempty"`
	Payload    any      `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(t Type, rideID string, payload any, accountIDs ...string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		RideID:     rideID,
		AccountIDs: accountIDs,
		Payload:    payload,
	}
}

// Publisher delivers events to a downstream system.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoOpPublisher drops every event.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(ctx context.Context, event Event) error { return nil }

// Fanout publishes each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes event and only logs a failure: by the time an event exists the
// state change is committed and must not be reported as failed.
func Emit(ctx context.Context, p Publisher, logger *slog.Logger, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.Error("failed to publish event",
			slog.String("event_id", event.ID),
			slog.String("type", string(event.Type)),
			slog.String("ride_id", event.RideID),
			slog.Any("error", err),
		)
	}
}
