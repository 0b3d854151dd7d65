package storage

import "errors"

var (
	// ErrAccountNotFound is returned when an account record does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrRideNotFound is returned when a ride record does not exist.
	ErrRideNotFound = errors.New("ride not found")

	// ErrDepositNotFound is returned when a deposit record does not exist.
	ErrDepositNotFound = errors.New("deposit not found")

	// ErrAlreadyExists is returned when creating a record whose key is taken.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInsufficientFunds is returned when a debit would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConflict is returned when a conditional write lost a race with another
	// writer. The caller should re-read and try again.
	ErrConflict = errors.New("concurrent modification")

	// ErrAlreadyApplied is returned when a transfer with the same id was already committed.
	ErrAlreadyApplied = errors.New("transfer already applied")

	// ErrDepositNotPending is returned when a deposit was already credited or failed.
	ErrDepositNotPending = errors.New("deposit not pending")

	// ErrUnavailable is returned when the datastore could not be reached or throttled the request.
	ErrUnavailable = errors.New("datastore unavailable")
)

// IsRetryable reports whether err is a contention or availability failure that
// is safe to retry after re-reading.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable)
}
