package acceptance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chris/caronaexpress/pkg/logging"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/retry"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/chris/caronaexpress/pkg/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 10, MaxBackoff: time.Millisecond}
}

func newWorkflow(store Store) *Workflow {
	return New(store, WithLogger(logging.Discard()), WithRetryPolicy(testPolicy()))
}

func seedAccount(t *testing.T, store *memory.Store, id, balance string) {
	t.Helper()
	_, err := store.CreateAccount(context.Background(), &models.Account{UserID: id, DisplayName: "name-" + id, Balance: models.MustMoney(balance)})
	require.NoError(t, err)
}

func seedRide(t *testing.T, store *memory.Store, id, driverID string, seats int, price string) {
	t.Helper()
	err := store.CreateRide(context.Background(), &models.Ride{
		ID:           id,
		DriverID:     driverID,
		DriverName:   "name-" + driverID,
		Origin:       "Recife - PE",
		Destination:  "Caruaru - PE",
		Date:         "15/03/2025",
		Time:         "07:30",
		Vehicle:      "Gol",
		PricePerSeat: models.MustMoney(price),
		SeatsTotal:   seats,
		Passengers:   []models.Passenger{},
		Status:       models.RideActive,
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, store *memory.Store, id string) models.Money {
	t.Helper()
	acct, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acct.Balance
}

func rideOf(t *testing.T, store *memory.Store, id string) *models.Ride {
	t.Helper()
	r, err := store.GetRide(context.Background(), id)
	require.NoError(t, err)
	return r
}

func TestAccept(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store := memory.New()
		seedAccount(t, store, "driver", "0")
		seedAccount(t, store, "p1", "50")
		seedRide(t, store, "r1", "driver", 2, "30")

		res, err := newWorkflow(store).Accept(ctx, Request{RideID: "r1", AccountID: "p1", DisplayName: "Bia"})

		require.NoError(t, err)
		assert.Equal(t, 1, res.PassengerCount)
		assert.True(t, res.PassengerBalance.EqualTo(models.MustMoney("20")))
		assert.True(t, res.DriverBalance.EqualTo(models.MustMoney("30")))
		assert.Equal(t, []models.Passenger{{AccountID: "p1", DisplayName: "Bia"}}, res.Ride.Passengers)
		assert.Equal(t, models.EntryRideFare, res.Transfer.Kind)
		assert.Equal(t, "r1", res.Transfer.Reference)
	})

	t.Run("Display Name Falls Back To Account", func(t *testing.T) {
		store := memory.New()
		seedAccount(t, store, "driver", "0")
		seedAccount(t, store, "p1", "50")
		seedRide(t, store, "r1", "driver", 2, "30")

		res, err := newWorkflow(store).Accept(ctx, Request{RideID: "r1", AccountID: "p1"})

		require.NoError(t, err)
		assert.Equal(t, "name-p1", res.Ride.Passengers[0].DisplayName)
	})

	t.Run("Rejections Leave Records Unchanged", func(t *testing.T) {
		cases := []struct {
			name      string
			seats     int
			status    models.RideStatus
			rideID    string
			accountID string
			balance   string
			roster    []string
			want      error
		}{
			{name: "Ride Not Found", seats: 2, rideID: "missing", accountID: "p1", balance: "50", want: ErrRideNotFound},
			{name: "Ride Closed", seats: 2, status: models.RideClosed, accountID: "p1", balance: "50", want: ErrRideClosed},
			{name: "Already Accepted", seats: 2, accountID: "p1", balance: "50", roster: []string{"p1"}, want: ErrAlreadyAccepted},
			{name: "Ride Full", seats: 1, accountID: "p1", balance: "50", roster: []string{"p2"}, want: ErrRideFull},
			{name: "Self Acceptance", seats: 2, accountID: "driver", balance: "50", want: ErrSelfAcceptance},
			{name: "Insufficient Funds", seats: 2, accountID: "p1", balance: "10", want: ErrInsufficientFunds},
			{name: "Account Not Found", seats: 2, accountID: "ghost", balance: "50", want: ErrAccountNotFound},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				store := memory.New()
				seedAccount(t, store, "driver", tc.balance)
				seedAccount(t, store, "p1", tc.balance)
				seedAccount(t, store, "p2", "50")
				seedRide(t, store, "r1", "driver", tc.seats, "30")
				for _, id := range tc.roster {
					_, err := newWorkflow(store).Accept(ctx, Request{RideID: "r1", AccountID: id})
					require.NoError(t, err)
				}
				if tc.status == models.RideClosed {
					require.NoError(t, store.CloseRide(ctx, "r1", 0))
				}
				before := rideOf(t, store, "r1")
				driverBefore := balanceOf(t, store, "driver")
				p1Before := balanceOf(t, store, "p1")

				rideID := tc.rideID
				if rideID == "" {
					rideID = "r1"
				}
				_, err := newWorkflow(store).Accept(ctx, Request{RideID: rideID, AccountID: tc.accountID})

				assert.ErrorIs(t, err, tc.want)
				after := rideOf(t, store, "r1")
				assert.Equal(t, before.Passengers, after.Passengers)
				assert.Equal(t, before.Version, after.Version)
				assert.True(t, balanceOf(t, store, "driver").EqualTo(driverBefore))
				assert.True(t, balanceOf(t, store, "p1").EqualTo(p1Before))
			})
		}
	})

	t.Run("Last Seat Race", func(t *testing.T) {
		store := memory.New()
		seedAccount(t, store, "driver", "0")
		seedAccount(t, store, "p1", "50")
		seedAccount(t, store, "p2", "50")
		seedRide(t, store, "r1", "driver", 1, "30.00")
		wf := newWorkflow(store)

		var wg sync.WaitGroup
		errs := make(map[string]error)
		var mu sync.Mutex
		start := make(chan struct{})
		for _, id := range []string{"p1", "p2"} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				<-start
				_, err := wf.Accept(ctx, Request{RideID: "r1", AccountID: id})
				mu.Lock()
				errs[id] = err
				mu.Unlock()
			}(id)
		}
		close(start)
		wg.Wait()

		winner, loser := "p1", "p2"
		if errs["p1"] != nil {
			winner, loser = "p2", "p1"
		}
		require.NoError(t, errs[winner])
		assert.ErrorIs(t, errs[loser], ErrRideFull)

		r := rideOf(t, store, "r1")
		require.Len(t, r.Passengers, 1)
		assert.Equal(t, winner, r.Passengers[0].AccountID)
		assert.True(t, balanceOf(t, store, winner).EqualTo(models.MustMoney("20")))
		assert.True(t, balanceOf(t, store, loser).EqualTo(models.MustMoney("50")))
		assert.True(t, balanceOf(t, store, "driver").EqualTo(models.MustMoney("30")))
	})

	t.Run("Many Racers Never Overbook", func(t *testing.T) {
		const seats, racers = 3, 12
		store := memory.New()
		seedAccount(t, store, "driver", "0")
		for i := 0; i < racers; i++ {
			seedAccount(t, store, fmt.Sprintf("p%d", i), "100")
		}
		seedRide(t, store, "r1", "driver", seats, "25")
		wf := New(store, WithLogger(logging.Discard()), WithRetryPolicy(retry.Policy{MaxAttempts: racers + 1, MaxBackoff: time.Millisecond}))

		var wg sync.WaitGroup
		var mu sync.Mutex
		accepted, full := 0, 0
		for i := 0; i < racers; i++ {
			for attempt := 0; attempt < 2; attempt++ {
				wg.Add(1)
				go func(id string) {
					defer wg.Done()
					_, err := wf.Accept(ctx, Request{RideID: "r1", AccountID: id})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						accepted++
					case errors.Is(err, ErrRideFull), errors.Is(err, ErrAlreadyAccepted):
						full++
					default:
						t.Errorf("unexpected error for %s: %v", id, err)
					}
				}(fmt.Sprintf("p%d", i))
			}
		}
		wg.Wait()

		r := rideOf(t, store, "r1")
		assert.Equal(t, seats, accepted)
		assert.Len(t, r.Passengers, seats)
		seen := make(map[string]bool)
		for _, p := range r.Passengers {
			assert.False(t, seen[p.AccountID], "passenger %s booked twice", p.AccountID)
			seen[p.AccountID] = true
		}

		total := balanceOf(t, store, "driver")
		for i := 0; i < racers; i++ {
			total = total.Plus(balanceOf(t, store, fmt.Sprintf("p%d", i)))
		}
		assert.True(t, total.EqualTo(models.MustMoney("1200")), "money is conserved, got %s", total)
		assert.True(t, balanceOf(t, store, "driver").EqualTo(models.MustMoney("75")))
	})
}

// flakyStore fails the first failures commits with err, or every commit
// when failures is negative. With applyFirst the failing commit still lands.
type flakyStore struct {
	*memory.Store
	err        error
	failures   int
	applyFirst bool
	commits    int
}

func (s *flakyStore) CommitAcceptance(ctx context.Context, a *models.Acceptance) error {
	s.commits++
	if s.failures < 0 || s.commits <= s.failures {
		if s.applyFirst {
			if err := s.Store.CommitAcceptance(ctx, a); err != nil {
				return err
			}
		}
		return s.err
	}
	return s.Store.CommitAcceptance(ctx, a)
}

func TestAcceptRetries(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *memory.Store {
		store := memory.New()
		seedAccount(t, store, "driver", "0")
		seedAccount(t, store, "p1", "50")
		seedRide(t, store, "r1", "driver", 2, "30")
		return store
	}

	t.Run("Datastore Down Surfaces Transient", func(t *testing.T) {
		store := &flakyStore{Store: setup(t), err: storage.ErrUnavailable, failures: -1}
		wf := New(store, WithLogger(logging.Discard()), WithRetryPolicy(retry.Policy{MaxAttempts: 3, MaxBackoff: time.Millisecond}))

		_, err := wf.Accept(ctx, Request{RideID: "r1", AccountID: "p1"})

		assert.ErrorIs(t, err, ErrTransient)
		assert.Equal(t, 3, store.commits)
		assert.True(t, balanceOf(t, store.Store, "p1").EqualTo(models.MustMoney("50")))
		assert.Empty(t, rideOf(t, store.Store, "r1").Passengers)
	})

	t.Run("Conflict Then Success", func(t *testing.T) {
		store := &flakyStore{Store: setup(t), err: storage.ErrConflict, failures: 1}

		res, err := newWorkflow(store).Accept(ctx, Request{RideID: "r1", AccountID: "p1"})

		require.NoError(t, err)
		assert.Equal(t, 2, res.Attempts)
		assert.Equal(t, 1, res.PassengerCount)
	})

	t.Run("Lost Reply Counts As Accepted", func(t *testing.T) {
		store := &flakyStore{Store: setup(t), err: storage.ErrUnavailable, failures: 1, applyFirst: true}

		res, err := newWorkflow(store).Accept(ctx, Request{RideID: "r1", AccountID: "p1"})

		require.NoError(t, err)
		assert.Equal(t, 1, res.PassengerCount)
		assert.True(t, res.PassengerBalance.EqualTo(models.MustMoney("20")))
		assert.True(t, res.DriverBalance.EqualTo(models.MustMoney("30")))
	})

	t.Run("Ride Deleted Before Commit", func(t *testing.T) {
		store := &flakyStore{Store: setup(t), err: storage.ErrRideNotFound, failures: -1}

		_, err := newWorkflow(store).Accept(ctx, Request{RideID: "r1", AccountID: "p1"})

		assert.ErrorIs(t, err, ErrRideNotFound)
		assert.Equal(t, "ride_not_found", outcomeOf(err))
		assert.Equal(t, 1, store.commits)
		assert.True(t, balanceOf(t, store.Store, "p1").EqualTo(models.MustMoney("50")))
	})

	t.Run("Already Accepted Without Lost Reply", func(t *testing.T) {
		store := setup(t)
		wf := newWorkflow(store)
		_, err := wf.Accept(ctx, Request{RideID: "r1", AccountID: "p1"})
		require.NoError(t, err)

		_, err = wf.Accept(ctx, Request{RideID: "r1", AccountID: "p1"})

		assert.ErrorIs(t, err, ErrAlreadyAccepted)
		assert.True(t, balanceOf(t, store, "p1").EqualTo(models.MustMoney("20")))
	})
}
