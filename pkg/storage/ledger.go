package storage

import (
	"context"

	"github.com/chris/caronaexpress/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// ListLedgerEntries retrieves the most recent ledger entries.
	ListLedgerEntries(ctx context.Context, limit int32) ([]models.LedgerEntry, error)

	// ListAccountEntries retrieves the most recent entries touching one account.
	ListAccountEntries(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error)
}

// LedgerWriter applies balance movements.
type LedgerWriter interface {
	// ApplyTransfer debits the source and credits the destination in one atomic
	// write, recording one ledger entry per touched account. The source balance
	// check happens inside the write.
	ApplyTransfer(ctx context.Context, transfer *models.Transfer) error
}

// LedgerStore groups the ledger read and write sides.
type LedgerStore interface {
	LedgerReader
	LedgerWriter
}

// DepositStore tracks payments arriving through the gateway.
type DepositStore interface {
	CreateDeposit(ctx context.Context, deposit *models.Deposit) error
	GetDeposit(ctx context.Context, depositID string) (*models.Deposit, error)
	GetDepositByPaymentRef(ctx context.Context, paymentRef string) (*models.Deposit, error)

	// FailDeposit moves a PENDING deposit to FAILED.
	FailDeposit(ctx context.Context, depositID string) error
}
