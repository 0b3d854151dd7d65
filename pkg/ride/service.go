package ride

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/caronaexpress/pkg/events"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage"
)

// Service creates, reads and closes rides.
type Service struct {
	store     storage.RideStore
	locator   Locator
	publisher events.Publisher
	feed      events.ChangeFeed
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets where domain events are sent.
func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }

// WithChangeFeed sets the feed notified after every ride mutation.
func WithChangeFeed(f events.ChangeFeed) Option { return func(s *Service) { s.feed = f } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a Service.
func NewService(store storage.RideStore, locator Locator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		locator:   locator,
		publisher: events.NoOpPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Offer validates and stores a new ride for driver.
func (s *Service) Offer(ctx context.Context, driver Driver, offer Offer) (*models.Ride, error) {
	r, err := New(driver, offer, s.locator, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateRide(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to store ride: %w", err)
	}

	s.logger.Info("ride offered",
		slog.String("ride_id", r.ID),
		slog.String("driver_id", r.DriverID),
		slog.Int("seats_total", r.SeatsTotal),
		slog.String("price_per_seat", r.PricePerSeat.String()),
	)
	s.changed(ctx, events.New(events.RideCreated, r.ID, r, r.DriverID))
	return r, nil
}

// Get returns one ride.
func (s *Service) Get(ctx context.Context, rideID string) (*models.Ride, error) {
	r, err := s.store.GetRide(ctx, rideID)
	if errors.Is(err, storage.ErrRideNotFound) {
		return nil, ErrRideNotFound
	}
	return r, err
}

// Close marks the driver's ride as CLOSED so it leaves discovery and stops
// accepting passengers.
func (s *Service) Close(ctx context.Context, driverID, rideID string) (*models.Ride, error) {
	r, err := s.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID != driverID {
		return nil, ErrNotDriver
	}
	if r.Status != models.RideActive {
		return nil, ErrRideClosed
	}
	if err := s.close(ctx, r); err != nil {
		return nil, err
	}
	return s.Get(ctx, rideID)
}

// ListForDriver returns the rides driverID offered, newest first.
func (s *Service) ListForDriver(ctx context.Context, driverID string) ([]models.Ride, error) {
	return s.store.ListRidesByDriver(ctx, driverID)
}

// ListForPassenger returns the rides accountID holds a seat on, newest first.
func (s *Service) ListForPassenger(ctx context.Context, accountID string) ([]models.Ride, error) {
	return s.store.ListRidesByPassenger(ctx, accountID)
}

// CloseDeparted closes every ACTIVE ride whose departure, read in loc, is
// before the current time. It returns how many rides it closed. Rides whose
// date or time cannot be parsed are left alone.
func (s *Service) CloseDeparted(ctx context.Context, loc *time.Location) (int, error) {
	now := s.now()
	var due []models.Ride
	for r, err := range s.store.ActiveRides(ctx) {
		if err != nil {
			return 0, fmt.Errorf("failed to list active rides: %w", err)
		}
		departs, perr := DepartsAt(&r, loc)
		if perr != nil {
			s.logger.Warn("skipping ride with unparseable departure", slog.String("ride_id", r.ID), slog.Any("error", perr))
			continue
		}
		if departs.Before(now) {
			due = append(due, r)
		}
	}

	closed := 0
	for i := range due {
		if err := s.close(ctx, &due[i]); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				// Changed since listed; the next sweep sees it again.
				continue
			}
			return closed, err
		}
		closed++
	}
	return closed, nil
}

func (s *Service) close(ctx context.Context, r *models.Ride) error {
	if err := s.store.CloseRide(ctx, r.ID, r.Version); err != nil {
		return fmt.Errorf("failed to close ride %s: %w", r.ID, err)
	}
	s.logger.Info("ride closed", slog.String("ride_id", r.ID), slog.Int("passengers", len(r.Passengers)))

	accounts := []string{r.DriverID}
	for _, p := range r.Passengers {
		accounts = append(accounts, p.AccountID)
	}
	s.changed(ctx, events.New(events.RideClosed, r.ID, nil, accounts...))
	return nil
}

func (s *Service) changed(ctx context.Context, event events.Event) {
	events.Emit(ctx, s.publisher, s.logger, event)
	if s.feed != nil {
		if err := s.feed.Notify(ctx, event.RideID); err != nil {
			s.logger.Warn("failed to notify ride change", slog.String("ride_id", event.RideID), slog.Any("error", err))
		}
	}
}
