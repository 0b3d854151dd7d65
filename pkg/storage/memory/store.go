// Package memory is an in-process implementation of the storage interfaces.
// It honors the same atomicity and conditional-write contract as the DynamoDB
// store and backs local development and the workflow tests.
package memory

import (
	"context"
	"iter"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage"
)

// Store keeps every record behind one mutex so each write is a single atomic unit.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]models.Account
	rides       map[string]models.Ride
	entries     []models.LedgerEntry
	transfers   map[string]struct{}
	deposits    map[string]models.Deposit
	connections map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts:    make(map[string]models.Account),
		rides:       make(map[string]models.Ride),
		transfers:   make(map[string]struct{}),
		deposits:    make(map[string]models.Deposit),
		connections: make(map[string]string),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func (s *Store) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[userID]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}
	return &acct, nil
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.UserID]; ok {
		return nil, storage.ErrAlreadyExists
	}
	s.accounts[account.UserID] = *account
	created := *account
	return &created, nil
}

func (s *Store) CreateRide(ctx context.Context, ride *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rides[ride.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.rides[ride.ID] = cloneRide(*ride)
	return nil
}

func (s *Store) GetRide(ctx context.Context, rideID string) (*models.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rides[rideID]
	if !ok {
		return nil, storage.ErrRideNotFound
	}
	r = cloneRide(r)
	return &r, nil
}

// ActiveRides takes a snapshot when iteration starts, so every range over the
// returned sequence observes the current state.
func (s *Store) ActiveRides(ctx context.Context) iter.Seq2[models.Ride, error] {
	return func(yield func(models.Ride, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(models.Ride{}, err)
			return
		}
		snapshot := s.selectRides(func(r *models.Ride) bool { return r.Status == models.RideActive })
		for _, r := range snapshot {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (s *Store) ListRidesByDriver(ctx context.Context, driverID string) ([]models.Ride, error) {
	return s.selectRides(func(r *models.Ride) bool { return r.DriverID == driverID }), nil
}

func (s *Store) ListRidesByPassenger(ctx context.Context, accountID string) ([]models.Ride, error) {
	return s.selectRides(func(r *models.Ride) bool { return r.HasPassenger(accountID) }), nil
}

func (s *Store) selectRides(match func(*models.Ride) bool) []models.Ride {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Ride, 0)
	for _, r := range s.rides {
		if match(&r) {
			out = append(out, cloneRide(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) CloseRide(ctx context.Context, rideID string, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rides[rideID]
	if !ok {
		return storage.ErrRideNotFound
	}
	if r.Status != models.RideActive || r.Version != expectedVersion {
		return storage.ErrConflict
	}
	now := time.Now().UTC()
	r.Status = models.RideClosed
	r.ClosedAt = &now
	r.Version++
	s.rides[rideID] = r
	return nil
}

func (s *Store) CommitAcceptance(ctx context.Context, a *models.Acceptance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rides[a.Ride.ID]
	if !ok {
		return storage.ErrRideNotFound
	}
	if current.Version != a.Ride.Version || current.Status != models.RideActive ||
		current.HasPassenger(a.Passenger.AccountID) || current.IsFull() {
		return storage.ErrConflict
	}

	if err := s.checkTransfer(&a.Transfer); err != nil {
		return err
	}

	s.applyTransfer(&a.Transfer)
	current.Passengers = append(slices.Clone(current.Passengers), a.Passenger)
	current.PassengerIDs = append(slices.Clone(current.PassengerIDs), a.Passenger.AccountID)
	current.Version++
	s.rides[current.ID] = current
	return nil
}

func (s *Store) ApplyTransfer(ctx context.Context, t *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkTransfer(t); err != nil {
		return err
	}
	if t.DepositID != "" {
		d, ok := s.deposits[t.DepositID]
		if !ok {
			return storage.ErrDepositNotFound
		}
		if d.Status != models.DepositPending {
			return storage.ErrDepositNotPending
		}
		d.Status = models.DepositCredited
		d.UpdatedAt = t.CreatedAt
		s.deposits[d.ID] = d
	}
	s.applyTransfer(t)
	return nil
}

// checkTransfer validates every condition of a transfer. Callers hold the lock.
func (s *Store) checkTransfer(t *models.Transfer) error {
	if _, done := s.transfers[t.ID]; done {
		return storage.ErrAlreadyApplied
	}
	if t.FromAccountID != "" {
		from, ok := s.accounts[t.FromAccountID]
		if !ok {
			return storage.ErrAccountNotFound
		}
		if from.Balance.Below(t.Amount) {
			return storage.ErrInsufficientFunds
		}
	}
	if t.ToAccountID != "" {
		if _, ok := s.accounts[t.ToAccountID]; !ok {
			return storage.ErrAccountNotFound
		}
	}
	return nil
}

// applyTransfer mutates balances and appends ledger entries. Callers hold the
// lock and have already run checkTransfer.
func (s *Store) applyTransfer(t *models.Transfer) {
	if t.FromAccountID != "" {
		from := s.accounts[t.FromAccountID]
		from.Balance = from.Balance.Minus(t.Amount)
		from.Version++
		from.UpdatedAt = t.CreatedAt
		s.accounts[from.UserID] = from
	}
	if t.ToAccountID != "" {
		to := s.accounts[t.ToAccountID]
		to.Balance = to.Balance.Plus(t.Amount)
		to.Version++
		to.UpdatedAt = t.CreatedAt
		s.accounts[to.UserID] = to
	}
	s.entries = append(s.entries, t.Entries()...)
	s.transfers[t.ID] = struct{}{}
}

func (s *Store) ListLedgerEntries(ctx context.Context, limit int32) ([]models.LedgerEntry, error) {
	return s.recentEntries(limit, func(models.LedgerEntry) bool { return true }), nil
}

func (s *Store) ListAccountEntries(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error) {
	return s.recentEntries(limit, func(e models.LedgerEntry) bool { return e.AccountID == accountID }), nil
}

func (s *Store) recentEntries(limit int32, match func(models.LedgerEntry) bool) []models.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.LedgerEntry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if limit > 0 && int32(len(out)) >= limit {
			break
		}
		if match(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	return out
}

func (s *Store) CreateDeposit(ctx context.Context, d *models.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deposits[d.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.deposits[d.ID] = *d
	return nil
}

func (s *Store) GetDeposit(ctx context.Context, depositID string) (*models.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deposits[depositID]
	if !ok {
		return nil, storage.ErrDepositNotFound
	}
	return &d, nil
}

func (s *Store) GetDepositByPaymentRef(ctx context.Context, paymentRef string) (*models.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.deposits {
		if d.PaymentRef == paymentRef {
			return &d, nil
		}
	}
	return nil, storage.ErrDepositNotFound
}

func (s *Store) FailDeposit(ctx context.Context, depositID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deposits[depositID]
	if !ok {
		return storage.ErrDepositNotFound
	}
	if d.Status != models.DepositPending {
		return storage.ErrDepositNotPending
	}
	d.Status = models.DepositFailed
	d.UpdatedAt = time.Now().UTC()
	s.deposits[depositID] = d
	return nil
}

func (s *Store) AddConnection(ctx context.Context, connectionID, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[connectionID] = accountID
	return nil
}

func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connectionID)
	return nil
}

func (s *Store) GetAllConnections(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.connections))
	for id := range s.connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) GetAccountConnections(ctx context.Context, accountID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, owner := range s.connections {
		if owner == accountID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func cloneRide(r models.Ride) models.Ride {
	r.Passengers = slices.Clone(r.Passengers)
	if r.Passengers == nil {
		r.Passengers = []models.Passenger{}
	}
	r.PassengerIDs = slices.Clone(r.PassengerIDs)
	return r
}
