package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/chris/caronaexpress/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testAcceptance() *models.Acceptance {
	ride := &models.Ride{
		ID:           "ride-1",
		DriverID:     "driver",
		SeatsTotal:   1,
		PricePerSeat: models.MustMoney("30"),
		Status:       models.RideActive,
		Version:      4,
		Passengers:   []models.Passenger{},
	}
	return &models.Acceptance{
		Ride:      ride,
		Passenger: models.Passenger{AccountID: "p1", DisplayName: "Paula"},
		Transfer: models.Transfer{
			ID:            "fare-1",
			FromAccountID: "p1",
			ToAccountID:   "driver",
			Amount:        ride.PricePerSeat,
			Kind:          models.EntryRideFare,
			Reference:     ride.ID,
			CreatedAt:     time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}
}

// cancelled builds a TransactionCanceledException with one reason per item.
func cancelled(codes []string, withItem map[int]bool) error {
	reasons := make([]types.CancellationReason, len(codes))
	for i, code := range codes {
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
		if withItem[i] {
			reasons[i].Item = map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "x"}}
		}
	}
	return &types.TransactionCanceledException{Message: aws.String("Transaction cancelled"), CancellationReasons: reasons}
}

func TestCommitAcceptance(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			if len(in.TransactItems) != 5 {
				return false
			}
			ride := in.TransactItems[0].Update
			debit := in.TransactItems[1].Update
			credit := in.TransactItems[2].Update
			version, ok := ride.ExpressionAttributeValues[":version"].(*types.AttributeValueMemberN)
			return aws.ToString(ride.TableName) == "rides" && ok && version.Value == "4" &&
				aws.ToString(debit.ConditionExpression) == "attribute_exists(user_id) AND balance >= :amount" &&
				aws.ToString(credit.ConditionExpression) == "attribute_exists(user_id)" &&
				in.TransactItems[3].Put != nil && in.TransactItems[4].Put != nil
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		store := New(mockClient, testTables)
		err := store.CommitAcceptance(context.Background(), testAcceptance())

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	cases := []struct {
		name     string
		codes    []string
		withItem map[int]bool
		want     error
	}{
		{
			name:     "Ride Changed",
			codes:    []string{"ConditionalCheckFailed", "None", "None", "None", "None"},
			withItem: map[int]bool{0: true},
			want:     storage.ErrConflict,
		},
		{
			name:  "Ride Missing",
			codes: []string{"ConditionalCheckFailed", "None", "None", "None", "None"},
			want:  storage.ErrRideNotFound,
		},
		{
			name:     "Insufficient Funds",
			codes:    []string{"None", "ConditionalCheckFailed", "None", "None", "None"},
			withItem: map[int]bool{1: true},
			want:     storage.ErrInsufficientFunds,
		},
		{
			name:  "Passenger Missing",
			codes: []string{"None", "ConditionalCheckFailed", "None", "None", "None"},
			want:  storage.ErrAccountNotFound,
		},
		{
			name:  "Driver Missing",
			codes: []string{"None", "None", "ConditionalCheckFailed", "None", "None"},
			want:  storage.ErrAccountNotFound,
		},
		{
			name:  "Transaction Conflict",
			codes: []string{"TransactionConflict", "None", "None", "None", "None"},
			want:  storage.ErrConflict,
		},
		{
			name:  "Throttled",
			codes: []string{"None", "ThrottlingError", "None", "None", "None"},
			want:  storage.ErrUnavailable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := new(mocks.DynamoDBAPI)
			mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, cancelled(tc.codes, tc.withItem))

			store := New(mockClient, testTables)
			err := store.CommitAcceptance(context.Background(), testAcceptance())

			assert.ErrorIs(t, err, tc.want)
			mockClient.AssertExpectations(t)
		})
	}
}

func TestApplyTransfer(t *testing.T) {
	t.Run("Deposit", func(t *testing.T) {
		transfer := &models.Transfer{
			ID:          "dep-1",
			ToAccountID: "p1",
			Amount:      models.MustMoney("100"),
			Kind:        models.EntryDeposit,
			DepositID:   "d1",
		}
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(in *dynamodb.TransactWriteItemsInput) bool {
			return len(in.TransactItems) == 3 &&
				aws.ToString(in.TransactItems[0].Update.TableName) == "accounts" &&
				aws.ToString(in.TransactItems[1].Update.TableName) == "deposits" &&
				aws.ToString(in.TransactItems[2].Put.TableName) == "ledger"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		store := New(mockClient, testTables)
		assert.NoError(t, store.ApplyTransfer(context.Background(), transfer))
		mockClient.AssertExpectations(t)
	})

	t.Run("Deposit Already Credited", func(t *testing.T) {
		transfer := &models.Transfer{ID: "dep-1", ToAccountID: "p1", Amount: models.MustMoney("100"), DepositID: "d1"}
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, cancelled([]string{"None", "ConditionalCheckFailed", "None"}, map[int]bool{1: true}))

		store := New(mockClient, testTables)
		err := store.ApplyTransfer(context.Background(), transfer)

		assert.ErrorIs(t, err, storage.ErrDepositNotPending)
		mockClient.AssertExpectations(t)
	})

	t.Run("Replay", func(t *testing.T) {
		transfer := &models.Transfer{ID: "t-1", FromAccountID: "a", ToAccountID: "b", Amount: models.MustMoney("5")}
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, cancelled([]string{"None", "None", "ConditionalCheckFailed", "ConditionalCheckFailed"}, nil))

		store := New(mockClient, testTables)
		err := store.ApplyTransfer(context.Background(), transfer)

		assert.ErrorIs(t, err, storage.ErrAlreadyApplied)
		mockClient.AssertExpectations(t)
	})

	t.Run("Service Error", func(t *testing.T) {
		transfer := &models.Transfer{ID: "t-1", FromAccountID: "a", ToAccountID: "b", Amount: models.MustMoney("5")}
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.InternalServerError{})

		store := New(mockClient, testTables)
		err := store.ApplyTransfer(context.Background(), transfer)

		assert.ErrorIs(t, err, storage.ErrUnavailable)
		mockClient.AssertExpectations(t)
	})
}
