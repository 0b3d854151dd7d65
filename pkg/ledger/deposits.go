package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chris/caronaexpress/pkg/events"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/payments"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/google/uuid"
)

// ErrDepositPending is returned by SettleDeposit while the payer has not paid yet.
var ErrDepositPending = errors.New("deposit still pending at the payment provider")

// Deposits opens and settles deposits. Crediting goes through the ledger so a
// deposit's money appears exactly once.
type Deposits struct {
	ledger  *Service
	store   storage.DepositStore
	gateway payments.Gateway
}

// NewDeposits creates a Deposits service.
func NewDeposits(ledger *Service, store storage.DepositStore, gateway payments.Gateway) *Deposits {
	return &Deposits{ledger: ledger, store: store, gateway: gateway}
}

// Start creates a PENDING deposit and the matching charge at the provider.
func (d *Deposits) Start(ctx context.Context, accountID string, amount models.Money) (*models.Deposit, error) {
	limits := d.ledger.limits
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	if amount.Below(limits.MinDeposit) || limits.MaxDeposit.Below(amount) {
		return nil, fmt.Errorf("%w: deposits must be between %s and %s", ErrInvalidAmount, limits.MinDeposit, limits.MaxDeposit)
	}
	if _, err := d.ledger.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	amount = models.Money{Decimal: amount.Round(2)}
	charge, err := d.gateway.CreateCharge(ctx, id, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	now := d.ledger.now().UTC()
	deposit := &models.Deposit{
		ID:           id,
		AccountID:    accountID,
		Amount:       amount,
		Method:       "PIX",
		PaymentRef:   charge.Ref,
		Status:       models.DepositPending,
		Instructions: charge.Instructions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := d.store.CreateDeposit(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to store deposit: %w", err)
	}

	d.ledger.logger.Info("deposit started",
		slog.String("deposit_id", id),
		slog.String("account_id", accountID),
		slog.String("amount", amount.String()),
	)
	return deposit, nil
}

// Get returns the deposit if it belongs to accountID.
func (d *Deposits) Get(ctx context.Context, accountID, depositID string) (*models.Deposit, error) {
	deposit, err := d.store.GetDeposit(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit.AccountID != accountID {
		return nil, ErrDepositNotFound
	}
	return deposit, nil
}

// Settle asks the provider about the charge behind paymentRef and credits or
// fails the deposit accordingly. Settling the same deposit again returns its
// current state without moving money.
func (d *Deposits) Settle(ctx context.Context, paymentRef string) (*models.Deposit, error) {
	deposit, err := d.store.GetDepositByPaymentRef(ctx, paymentRef)
	if err != nil {
		return nil, err
	}
	if deposit.Status != models.DepositPending {
		return deposit, nil
	}

	status, err := d.gateway.ChargeStatus(ctx, paymentRef)
	if err != nil {
		return nil, err
	}

	logger := d.ledger.logger.With(slog.String("deposit_id", deposit.ID), slog.String("payment_ref", paymentRef))
	switch status {
	case payments.StatusSucceeded:
		_, applied, err := d.ledger.transfer(ctx, TransferRequest{
			ID:          "deposit-" + deposit.ID,
			To:          deposit.AccountID,
			Amount:      deposit.Amount,
			Kind:        models.EntryDeposit,
			Reference:   deposit.ID,
			DepositID:   deposit.ID,
			Description: "Depósito via " + deposit.Method,
		})
		switch {
		case errors.Is(err, storage.ErrDepositNotPending) || (err == nil && !applied):
			logger.Info("deposit already settled")
		case err != nil:
			return nil, fmt.Errorf("failed to credit deposit: %w", err)
		default:
			logger.Info("deposit credited")
			events.Emit(ctx, d.ledger.publisher, logger, events.New(events.DepositCredited, "", deposit, deposit.AccountID))
		}
	case payments.StatusFailed:
		if err := d.store.FailDeposit(ctx, deposit.ID); err != nil && !errors.Is(err, storage.ErrDepositNotPending) {
			return nil, fmt.Errorf("failed to mark deposit failed: %w", err)
		}
		logger.Info("deposit failed")
		events.Emit(ctx, d.ledger.publisher, logger, events.New(events.DepositFailed, "", deposit, deposit.AccountID))
	default:
		return deposit, ErrDepositPending
	}

	return d.store.GetDeposit(ctx, deposit.ID)
}
