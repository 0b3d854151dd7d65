package memory

import (
	"context"
	"testing"
	"time"

	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, s *Store, id, balance string) {
	t.Helper()
	_, err := s.CreateAccount(context.Background(), &models.Account{UserID: id, DisplayName: id, Balance: models.MustMoney(balance)})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, s *Store, id string) models.Money {
	t.Helper()
	acct, err := s.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acct.Balance
}

func TestApplyTransfer(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "alice", "50")
		seedAccount(t, s, "bob", "0")

		err := s.ApplyTransfer(ctx, &models.Transfer{ID: "t1", FromAccountID: "alice", ToAccountID: "bob", Amount: models.MustMoney("30"), CreatedAt: time.Now()})

		require.NoError(t, err)
		assert.True(t, balanceOf(t, s, "alice").EqualTo(models.MustMoney("20")))
		assert.True(t, balanceOf(t, s, "bob").EqualTo(models.MustMoney("30")))
		entries, _ := s.ListAccountEntries(ctx, "bob", 10)
		require.Len(t, entries, 1)
		assert.Equal(t, models.Credit, entries[0].Side)
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "alice", "10")
		seedAccount(t, s, "bob", "0")

		err := s.ApplyTransfer(ctx, &models.Transfer{ID: "t1", FromAccountID: "alice", ToAccountID: "bob", Amount: models.MustMoney("30")})

		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
		assert.True(t, balanceOf(t, s, "alice").EqualTo(models.MustMoney("10")))
		assert.True(t, balanceOf(t, s, "bob").IsZero())
		entries, _ := s.ListLedgerEntries(ctx, 10)
		assert.Empty(t, entries)
	})

	t.Run("Missing Destination", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "alice", "50")

		err := s.ApplyTransfer(ctx, &models.Transfer{ID: "t1", FromAccountID: "alice", ToAccountID: "ghost", Amount: models.MustMoney("5")})

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		assert.True(t, balanceOf(t, s, "alice").EqualTo(models.MustMoney("50")))
	})

	t.Run("Replay", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "alice", "50")
		tr := &models.Transfer{ID: "t1", ToAccountID: "alice", Amount: models.MustMoney("5")}

		require.NoError(t, s.ApplyTransfer(ctx, tr))
		assert.ErrorIs(t, s.ApplyTransfer(ctx, tr), storage.ErrAlreadyApplied)
		assert.True(t, balanceOf(t, s, "alice").EqualTo(models.MustMoney("55")))
	})

	t.Run("Deposit Credited Once", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "alice", "0")
		require.NoError(t, s.CreateDeposit(ctx, &models.Deposit{ID: "d1", AccountID: "alice", Amount: models.MustMoney("100"), Status: models.DepositPending}))

		require.NoError(t, s.ApplyTransfer(ctx, &models.Transfer{ID: "t1", ToAccountID: "alice", Amount: models.MustMoney("100"), DepositID: "d1"}))
		err := s.ApplyTransfer(ctx, &models.Transfer{ID: "t2", ToAccountID: "alice", Amount: models.MustMoney("100"), DepositID: "d1"})

		assert.ErrorIs(t, err, storage.ErrDepositNotPending)
		assert.True(t, balanceOf(t, s, "alice").EqualTo(models.MustMoney("100")))
		d, _ := s.GetDeposit(ctx, "d1")
		assert.Equal(t, models.DepositCredited, d.Status)
	})
}

func TestCommitAcceptance(t *testing.T) {
	ctx := context.Background()
	newRide := func() *models.Ride {
		return &models.Ride{ID: "r1", DriverID: "driver", SeatsTotal: 1, PricePerSeat: models.MustMoney("30"), Status: models.RideActive, Passengers: []models.Passenger{}}
	}
	acceptance := func(ride *models.Ride, passenger string) *models.Acceptance {
		return &models.Acceptance{
			Ride:      ride,
			Passenger: models.Passenger{AccountID: passenger, DisplayName: passenger},
			Transfer:  models.Transfer{ID: "fare-" + passenger, FromAccountID: passenger, ToAccountID: ride.DriverID, Amount: ride.PricePerSeat},
		}
	}

	t.Run("Success", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "driver", "0")
		seedAccount(t, s, "p1", "50")
		require.NoError(t, s.CreateRide(ctx, newRide()))
		read, _ := s.GetRide(ctx, "r1")

		require.NoError(t, s.CommitAcceptance(ctx, acceptance(read, "p1")))

		after, _ := s.GetRide(ctx, "r1")
		assert.Equal(t, []models.Passenger{{AccountID: "p1", DisplayName: "p1"}}, after.Passengers)
		assert.Equal(t, int64(1), after.Version)
		assert.True(t, balanceOf(t, s, "p1").EqualTo(models.MustMoney("20")))
		assert.True(t, balanceOf(t, s, "driver").EqualTo(models.MustMoney("30")))
	})

	t.Run("Stale Read", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "driver", "0")
		seedAccount(t, s, "p1", "50")
		seedAccount(t, s, "p2", "50")
		require.NoError(t, s.CreateRide(ctx, newRide()))
		first, _ := s.GetRide(ctx, "r1")
		second, _ := s.GetRide(ctx, "r1")

		require.NoError(t, s.CommitAcceptance(ctx, acceptance(first, "p1")))
		err := s.CommitAcceptance(ctx, acceptance(second, "p2"))

		assert.ErrorIs(t, err, storage.ErrConflict)
		assert.True(t, balanceOf(t, s, "p2").EqualTo(models.MustMoney("50")))
	})

	t.Run("Insufficient Funds", func(t *testing.T) {
		s := New()
		seedAccount(t, s, "driver", "0")
		seedAccount(t, s, "p1", "10")
		require.NoError(t, s.CreateRide(ctx, newRide()))
		read, _ := s.GetRide(ctx, "r1")

		err := s.CommitAcceptance(ctx, acceptance(read, "p1"))

		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
		after, _ := s.GetRide(ctx, "r1")
		assert.Empty(t, after.Passengers)
		assert.Equal(t, int64(0), after.Version)
	})
}

func TestActiveRides(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateRide(ctx, &models.Ride{ID: "old", Status: models.RideActive, CreatedAt: base}))
	require.NoError(t, s.CreateRide(ctx, &models.Ride{ID: "new", Status: models.RideActive, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.CreateRide(ctx, &models.Ride{ID: "closed", Status: models.RideClosed, CreatedAt: base}))

	var ids []string
	for r, err := range s.ActiveRides(ctx) {
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"new", "old"}, ids)

	require.NoError(t, s.CloseRide(ctx, "new", 0))
	ids = nil
	for r, err := range s.ActiveRides(ctx) {
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"old"}, ids)
}
