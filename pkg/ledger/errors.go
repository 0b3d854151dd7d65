package ledger

import (
	"errors"

	"github.com/chris/caronaexpress/pkg/storage"
)

var (
	ErrInsufficientFunds = storage.ErrInsufficientFunds
	ErrAccountNotFound   = storage.ErrAccountNotFound
	ErrDepositNotFound   = storage.ErrDepositNotFound

	// ErrInvalidAmount is returned for non-positive amounts and deposits outside the configured limits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrSameAccount is returned when a transfer names the same account on both sides.
	ErrSameAccount = errors.New("source and destination accounts are the same")
	// ErrTransient is returned when the datastore kept failing for the whole retry budget.
	ErrTransient = errors.New("temporary failure, try again")
)
