package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/caronaexpress/pkg/storage"
)

// unavailable wraps err with storage.ErrUnavailable when it signals throttling,
// a service-side failure or an expired deadline.
func unavailable(msg string, err error) error {
	var (
		throughput *types.ProvisionedThroughputExceededException
		limit      *types.RequestLimitExceeded
		internal   *types.InternalServerError
		inProgress *types.TransactionInProgressException
	)
	switch {
	case errors.As(err, &throughput), errors.As(err, &limit), errors.As(err, &internal),
		errors.As(err, &inProgress), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", msg, storage.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// itemRole names what an item of a TransactWriteItems call stands for, so a
// cancellation reason can be mapped back to a domain error.
type itemRole int

const (
	roleRide itemRole = iota
	roleDebit
	roleCredit
	roleDeposit
	roleEntry
)

// cancellationError maps the reasons of a cancelled transaction to the storage error
// describing the first failed condition. Replays are reported before anything else.
func cancellationError(tce *types.TransactionCanceledException, roles []itemRole) error {
	reasons := tce.CancellationReasons
	failed := func(i int) bool {
		return i < len(reasons) && aws.ToString(reasons[i].Code) == "ConditionalCheckFailed"
	}

	for i, role := range roles {
		if role == roleEntry && failed(i) {
			return storage.ErrAlreadyApplied
		}
	}

	for i, role := range roles {
		if !failed(i) {
			continue
		}
		missing := reasons[i].Item == nil
		switch role {
		case roleRide:
			if missing {
				return storage.ErrRideNotFound
			}
			return storage.ErrConflict
		case roleDebit:
			if missing {
				return storage.ErrAccountNotFound
			}
			return storage.ErrInsufficientFunds
		case roleCredit:
			return storage.ErrAccountNotFound
		case roleDeposit:
			if missing {
				return storage.ErrDepositNotFound
			}
			return storage.ErrDepositNotPending
		}
	}

	for _, r := range reasons {
		switch aws.ToString(r.Code) {
		case "TransactionConflict":
			return storage.ErrConflict
		case "ThrottlingError", "ProvisionedThroughputExceeded", "RequestLimitExceeded":
			return storage.ErrUnavailable
		}
	}
	return fmt.Errorf("transaction cancelled: %s", aws.ToString(tce.Message))
}
