// Package discovery finds ACTIVE rides matching a set of filters, either once
// or as a live view that refreshes whenever a ride changes.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chris/caronaexpress/pkg/events"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/observability"
	"github.com/chris/caronaexpress/pkg/storage"
)

// ErrUnavailable is returned when the ride datastore cannot be read.
var ErrUnavailable = errors.New("ride search unavailable")

// DefaultPollInterval is how often a live view re-reads without a change signal.
const DefaultPollInterval = 10 * time.Second

// Service runs searches against the authoritative ride set.
type Service struct {
	rides        storage.RideStore
	feed         events.ChangeFeed
	logger       *slog.Logger
	pollInterval time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithChangeFeed makes live views refresh on ride changes instead of only polling.
func WithChangeFeed(f events.ChangeFeed) Option { return func(s *Service) { s.feed = f } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithPollInterval(d time.Duration) Option { return func(s *Service) { s.pollInterval = d } }

// NewService creates a discovery Service.
func NewService(rides storage.RideStore, opts ...Option) *Service {
	s := &Service{
		rides:        rides,
		logger:       slog.Default(),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the rides matching f. Nothing is read until the sequence is
// ranged over, and every range reads the datastore again. A read failure is
// yielded once as an error wrapping ErrUnavailable and ends the sequence.
func (s *Service) Search(ctx context.Context, f Filters) iter.Seq2[models.Ride, error] {
	return func(yield func(models.Ride, error) bool) {
		started := time.Now()
		defer func() { observability.SearchDuration.Observe(time.Since(started).Seconds()) }()

		for r, err := range s.rides.ActiveRides(ctx) {
			if err != nil {
				yield(models.Ride{}, fmt.Errorf("%w: %w", ErrUnavailable, err))
				return
			}
			if !f.Match(&r) {
				continue
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Collect drains Search into a slice.
func (s *Service) Collect(ctx context.Context, f Filters) ([]models.Ride, error) {
	out := make([]models.Ride, 0)
	for r, err := range s.Search(ctx, f) {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Snapshot is one delivery of a live view: the full current result, or the
// error that prevented computing it.
type Snapshot struct {
	Rides []models.Ride
	Err   error
}

// Watch delivers the current result immediately and then again every time it
// changes, where a change is any ride entering or leaving the result or any
// matching ride being updated. The channel closes when ctx is done.
func (s *Service) Watch(ctx context.Context, f Filters) (<-chan Snapshot, error) {
	var changes <-chan string
	if s.feed != nil {
		ch, err := s.feed.Subscribe(ctx)
		if err != nil {
			s.logger.Warn("change feed unavailable, polling only", slog.Any("error", err))
		} else {
			changes = ch
		}
	}

	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		observability.LiveSubscribers.Inc()
		defer observability.LiveSubscribers.Dec()

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		var (
			last string
			sent bool
		)
		refresh := func() bool {
			rides, err := s.Collect(ctx, f)
			if ctx.Err() != nil {
				return false
			}
			key := "error"
			if err == nil {
				key = fingerprint(rides)
			}
			if sent && key == last {
				return true
			}
			last, sent = key, true
			select {
			case out <- Snapshot{Rides: rides, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !refresh() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					changes = nil
					continue
				}
				drain(changes)
			case <-ticker.C:
			}
			if !refresh() {
				return
			}
		}
	}()
	return out, nil
}

// drain discards queued signals so a burst of changes causes one refresh.
func drain(ch <-chan string) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func fingerprint(rides []models.Ride) string {
	var b strings.Builder
	for _, r := range rides {
		b.WriteString(r.ID)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(r.Version, 10))
		b.WriteByte(';')
	}
	return b.String()
}
