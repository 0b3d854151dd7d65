// Package acceptance implements the seat claim: a passenger takes a seat on a
// ride and pays the driver in one atomic unit.
//
// Every attempt reads the ride and the passenger account fresh, validates
// them, and commits conditioned on the ride version it read. A concurrent
// acceptance bumps that version, which makes the losing commit fail and the
// loop start over from a new read, so the seat count is always checked
// against the state being written.
package acceptance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/caronaexpress/pkg/events"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/observability"
	"github.com/chris/caronaexpress/pkg/retry"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/google/uuid"
)

// Store is the persistence the workflow needs.
type Store interface {
	storage.AccountStore
	storage.RideStore
	storage.AcceptanceStore
}

// Request identifies who wants which ride.
type Request struct {
	RideID      string
	AccountID   string
	DisplayName string
}

// Result is the state right after a successful acceptance.
type Result struct {
	Ride             *models.Ride
	Transfer         models.Transfer
	PassengerBalance models.Money
	DriverBalance    models.Money
	PassengerCount   int
	Attempts         int
}

// Workflow runs acceptances.
type Workflow struct {
	store     Store
	publisher events.Publisher
	feed      events.ChangeFeed
	logger    *slog.Logger
	policy    retry.Policy
	now       func() time.Time
}

// Option configures a Workflow.
type Option func(*Workflow)

func WithPublisher(p events.Publisher) Option { return func(w *Workflow) { w.publisher = p } }
func WithChangeFeed(f events.ChangeFeed) Option { return func(w *Workflow) { w.feed = f } }
func WithLogger(l *slog.Logger) Option { return func(w *Workflow) { w.logger = l } }
func WithRetryPolicy(p retry.Policy) Option { return func(w *Workflow) { w.policy = p } }
func WithClock(now func() time.Time) Option { return func(w *Workflow) { w.now = now } }

// New creates a Workflow.
func New(store Store, opts ...Option) *Workflow {
	w := &Workflow{
		store:     store,
		publisher: events.NoOpPublisher{},
		logger:    slog.Default(),
		policy:    retry.DefaultPolicy(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Accept claims a seat on req.RideID for req.AccountID and charges the fare.
// Rejections are reported with the package's error values and leave every
// record unchanged.
func (w *Workflow) Accept(ctx context.Context, req Request) (*Result, error) {
	logger := w.logger.With(slog.String("ride_id", req.RideID), slog.String("passenger_id", req.AccountID))

	var (
		committed *models.Acceptance
		ambiguous bool
	)
	attempts, err := retry.Do(ctx, w.policy, storage.IsRetryable, func(ctx context.Context, attempt int) error {
		a, err := w.prepare(ctx, req)
		if err != nil {
			if ambiguous && errors.Is(err, ErrAlreadyAccepted) {
				// An earlier commit whose outcome we could not observe went through.
				committed = nil
				return nil
			}
			return err
		}

		err = w.store.CommitAcceptance(ctx, a)
		switch {
		case err == nil:
			committed = a
			return nil
		case errors.Is(err, storage.ErrRideNotFound):
			return ErrRideNotFound
		case errors.Is(err, storage.ErrUnavailable):
			ambiguous = true
		case errors.Is(err, storage.ErrInsufficientFunds):
			// Balance dropped between the read and the commit; re-validate.
			return storage.ErrConflict
		}
		if storage.IsRetryable(err) {
			logger.Debug("acceptance attempt lost a race", slog.Int("attempt", attempt), slog.Any("error", err))
		}
		return err
	})
	observability.AcceptanceAttempts.Observe(float64(attempts))

	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			err = fmt.Errorf("%w: %w", ErrTransient, err)
		}
		outcome := outcomeOf(err)
		observability.AcceptancesTotal.WithLabelValues(outcome).Inc()
		logger.Info("acceptance rejected", slog.String("outcome", outcome), slog.Int("attempt", attempts), slog.Any("error", err))
		return nil, err
	}

	result, err := w.result(ctx, req, committed, attempts)
	if err != nil {
		return nil, err
	}
	observability.AcceptancesTotal.WithLabelValues("accepted").Inc()
	logger.Info("ride accepted",
		slog.String("outcome", "accepted"),
		slog.Int("attempt", attempts),
		slog.Int("passengers", result.PassengerCount),
		slog.String("fare", result.Ride.PricePerSeat.String()),
	)

	if committed != nil {
		accounts := []string{req.AccountID, result.Ride.DriverID}
		events.Emit(ctx, w.publisher, w.logger, events.New(events.RideAccepted, req.RideID, result.Transfer, accounts...))
		if w.feed != nil {
			if err := w.feed.Notify(ctx, req.RideID); err != nil {
				logger.Warn("failed to notify ride change", slog.Any("error", err))
			}
		}
	}
	return result, nil
}

// prepare reads the ride and passenger account and runs every check in order.
func (w *Workflow) prepare(ctx context.Context, req Request) (*models.Acceptance, error) {
	r, err := w.store.GetRide(ctx, req.RideID)
	if errors.Is(err, storage.ErrRideNotFound) {
		return nil, ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}

	switch {
	case r.Status != models.RideActive:
		return nil, ErrRideClosed
	case r.HasPassenger(req.AccountID):
		return nil, ErrAlreadyAccepted
	case r.IsFull():
		return nil, ErrRideFull
	case r.DriverID == req.AccountID:
		return nil, ErrSelfAcceptance
	}

	passenger, err := w.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, err
	}
	if passenger.Balance.Below(r.PricePerSeat) {
		return nil, ErrInsufficientFunds
	}

	name := req.DisplayName
	if name == "" {
		name = passenger.DisplayName
	}
	return &models.Acceptance{
		Ride:      r,
		Passenger: models.Passenger{AccountID: req.AccountID, DisplayName: name},
		Transfer: models.Transfer{
			ID:            uuid.NewString(),
			FromAccountID: req.AccountID,
			ToAccountID:   r.DriverID,
			Amount:        r.PricePerSeat,
			Kind:          models.EntryRideFare,
			Reference:     r.ID,
			Description:   fmt.Sprintf("Carona %s → %s", r.Origin, r.Destination),
			CreatedAt:     w.now().UTC(),
		},
	}, nil
}

// result re-reads the records the acceptance touched.
func (w *Workflow) result(ctx context.Context, req Request, a *models.Acceptance, attempts int) (*Result, error) {
	r, err := w.store.GetRide(ctx, req.RideID)
	if err != nil {
		return nil, fmt.Errorf("accepted but failed to reload ride: %w", err)
	}
	passenger, err := w.store.GetAccount(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("accepted but failed to reload passenger: %w", err)
	}
	driver, err := w.store.GetAccount(ctx, r.DriverID)
	if err != nil {
		return nil, fmt.Errorf("accepted but failed to reload driver: %w", err)
	}

	res := &Result{
		Ride:             r,
		PassengerBalance: passenger.Balance,
		DriverBalance:    driver.Balance,
		PassengerCount:   len(r.Passengers),
		Attempts:         attempts,
	}
	if a != nil {
		res.Transfer = a.Transfer
	}
	return res, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrRideNotFound):
		return "ride_not_found"
	case errors.Is(err, ErrRideClosed):
		return "ride_closed"
	case errors.Is(err, ErrAlreadyAccepted):
		return "already_accepted"
	case errors.Is(err, ErrRideFull):
		return "ride_full"
	case errors.Is(err, ErrSelfAcceptance):
		return "self_acceptance"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrTransient):
		return "transient"
	default:
		return "error"
	}
}
