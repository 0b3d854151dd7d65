// Package ledger moves money between accounts and tracks deposits funded
// through the payment gateway. Every movement is an atomic transfer recorded
// as double-entry lines.
package ledger

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

// Store is the persistence the ledger needs.
type Store interface {
	storage.AccountStore
	storage.LedgerStore
}

// Limits bounds a single deposit.
type Limits struct {
	MinDeposit models.Money
	MaxDeposit models.Money
}

// DefaultLimits allows deposits from 1.00 to 10000.00.
func DefaultLimits() Limits {
	return Limits{MinDeposit: models.MustMoney("1.00"), MaxDeposit: models.MustMoney("10000.00")}
}

// TransferRequest describes a movement of money. ID is optional; passing the
// same ID twice applies the transfer once.
type TransferRequest struct {
	ID          string
	From        string
	To          string
	Amount      models.Money
	Kind        models.EntryKind
	Reference   string
	Description string
	// DepositID moves that PENDING deposit to CREDITED in the same write.
	DepositID string
}

// Service is the ledger entry point.
type Service struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	policy    retry.Policy
	limits    Limits
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }
func WithRetryPolicy(p retry.Policy) Option { return func(s *Service) { s.policy = p } }
func WithLimits(l Limits) Option { return func(s *Service) { s.limits = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a ledger Service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		publisher: events.NoOpPublisher{},
		logger:    slog.Default(),
		policy:    retry.DefaultPolicy(),
		limits:    DefaultLimits(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureAccount returns the account for userID, opening one with a zero
// balance on first use.
func (s *Service) EnsureAccount(ctx context.Context, userID, displayName string) (*models.Account, error) {
	acct, err := s.store.GetAccount(ctx, userID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, storage.ErrAccountNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	acct, err = s.store.CreateAccount(ctx, &models.Account{
		UserID:      userID,
		DisplayName: displayName,
		Balance:     models.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Opened concurrently by another request.
		return s.store.GetAccount(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open account: %w", err)
	}
	s.logger.Info("account opened", slog.String("account_id", userID))
	return acct, nil
}

// Account returns one account.
func (s *Service) Account(ctx context.Context, userID string) (*models.Account, error) {
	return s.store.GetAccount(ctx, userID)
}

// Transfer moves req.Amount atomically. It fails with ErrInsufficientFunds or
// ErrAccountNotFound and then no balance has changed.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*models.Transfer, error) {
	t, _, err := s.transfer(ctx, req)
	return t, err
}

// transfer is Transfer that also reports whether this call committed the
// transfer, as opposed to finding it already applied.
func (s *Service) transfer(ctx context.Context, req TransferRequest) (*models.Transfer, bool, error) {
	amount := models.Money{Decimal: req.Amount.Round(2)}
	if !amount.IsPositive() {
		return nil, false, fmt.Errorf("%w: must be at least one cent", ErrInvalidAmount)
	}
	if req.From == "" && req.To == "" {
		return nil, false, fmt.Errorf("%w: no account given", ErrAccountNotFound)
	}
	if req.From == req.To {
		return nil, false, ErrSameAccount
	}
	if req.Kind == "" {
		req.Kind = models.EntryTransfer
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	t := &models.Transfer{
		ID:            req.ID,
		FromAccountID: req.From,
		ToAccountID:   req.To,
		Amount:        amount,
		Kind:          req.Kind,
		Reference:     req.Reference,
		DepositID:     req.DepositID,
		Description:   req.Description,
		CreatedAt:     s.now().UTC(),
	}
	applied, err := s.apply(ctx, t)
	if err != nil {
		return nil, false, err
	}
	return t, applied, nil
}

// Withdraw takes amount out of the system from accountID.
func (s *Service) Withdraw(ctx context.Context, accountID string, amount models.Money) (*models.Transfer, error) {
	return s.Transfer(ctx, TransferRequest{
		From:        accountID,
		Amount:      amount,
		Kind:        models.EntryWithdrawal,
		Description: "Saque",
	})
}

// History lists the most recent entries of one account.
func (s *Service) History(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error) {
	return s.store.ListAccountEntries(ctx, accountID, limit)
}

// Recent lists the most recent entries across all accounts.
func (s *Service) Recent(ctx context.Context, limit int32) ([]models.LedgerEntry, error) {
	return s.store.ListLedgerEntries(ctx, limit)
}

// apply commits t with retries. A replay of an already committed transfer
// counts as success but reports applied as false.
func (s *Service) apply(ctx context.Context, t *models.Transfer) (applied bool, err error) {
	logger := s.logger.With(
		slog.String("transfer_id", t.ID),
		slog.String("kind", string(t.Kind)),
		slog.String("amount", t.Amount.String()),
	)

	attempts, err := retry.Do(ctx, s.policy, storage.IsRetryable, func(ctx context.Context, attempt int) error {
		err := s.store.ApplyTransfer(ctx, t)
		if err != nil && storage.IsRetryable(err) {
			logger.Warn("transfer attempt failed", slog.Int("attempt", attempt), slog.Any("error", err))
		}
		return err
	})

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrAlreadyApplied):
		logger.Info("transfer already applied")
		err = nil
		outcome = "replayed"
	case errors.Is(err, storage.ErrInsufficientFunds):
		outcome = "insufficient_funds"
	case errors.Is(err, storage.ErrAccountNotFound):
		outcome = "account_not_found"
	case errors.Is(err, storage.ErrDepositNotPending):
		outcome = "deposit_not_pending"
	default:
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			err = fmt.Errorf("%w: %w", ErrTransient, err)
		}
		outcome = "error"
	}
	observability.TransfersTotal.WithLabelValues(string(t.Kind), outcome).Inc()

	if err != nil {
		logger.Info("transfer rejected", slog.String("outcome", outcome), slog.Int("attempts", attempts), slog.Any("error", err))
		return false, err
	}
	if outcome != "ok" {
		return false, nil
	}
	logger.Info("transfer applied", slog.Int("attempts", attempts))
	events.Emit(ctx, s.publisher, s.logger, events.New(events.TransferCompleted, "", t, accountsOf(t)...))
	return true, nil
}

func accountsOf(t *models.Transfer) []string {
	var ids []string
	for _, id := range []string{t.FromAccountID, t.ToAccountID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
