package events

import (
	"context"
	"sync"
)

// ChangeFeed signals that a ride changed. Subscribers receive the ride id of
// every change published after they subscribed; delivery is best effort.
type ChangeFeed interface {
	Notify(ctx context.Context, rideID string) error
	Subscribe(ctx context.Context) (<-chan string, error)
}

// LocalFeed is an in-process ChangeFeed for single-instance deployments.
type LocalFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan string
}

// NewLocalFeed creates an empty LocalFeed.
func NewLocalFeed() *LocalFeed {
	return &LocalFeed{subs: make(map[int]chan string)}
}

var _ ChangeFeed = (*LocalFeed)(nil)

// Notify never blocks: a subscriber whose buffer is full already has a pending
// wake-up and loses nothing by missing this one.
func (f *LocalFeed) Notify(ctx context.Context, rideID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- rideID:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is done, then closes its channel.
func (f *LocalFeed) Subscribe(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()

	return ch, nil
}
