package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/chris/caronaexpress/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTables = Tables{
	Accounts:    "accounts",
	Rides:       "rides",
	Ledger:      "ledger",
	Deposits:    "deposits",
	Connections: "connections",
}

func TestCreateAccount(t *testing.T) {
	account := &models.Account{UserID: "test-user", DisplayName: "Test", Balance: models.Zero}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			return aws.ToString(in.TableName) == "accounts" &&
				aws.ToString(in.ConditionExpression) == "attribute_not_exists(user_id)"
		})).Return(&dynamodb.PutItemOutput{}, nil)

		store := New(mockClient, testTables)
		created, err := store.CreateAccount(context.Background(), account)

		assert.NoError(t, err)
		assert.Equal(t, account, created)
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := New(mockClient, testTables)
		_, err := store.CreateAccount(context.Background(), account)

		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := New(mockClient, testTables)
		_, err := store.CreateAccount(context.Background(), account)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account in DynamoDB")
		assert.NotErrorIs(t, err, storage.ErrUnavailable)
		mockClient.AssertExpectations(t)
	})
}

func TestGetAccount(t *testing.T) {
	userID := "test-user"

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		accountAV, err := attributevalue.MarshalMap(&models.Account{UserID: userID, DisplayName: "Ana", Balance: models.MustMoney("50.25"), Version: 3})
		require.NoError(t, err)
		mockClient.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
			return aws.ToBool(in.ConsistentRead)
		})).Return(&dynamodb.GetItemOutput{Item: accountAV}, nil)

		store := New(mockClient, testTables)
		account, err := store.GetAccount(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, userID, account.UserID)
		assert.Equal(t, "Ana", account.DisplayName)
		assert.Equal(t, int64(3), account.Version)
		assert.True(t, account.Balance.EqualTo(models.MustMoney("50.25")))
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil)

		store := New(mockClient, testTables)
		_, err := store.GetAccount(context.Background(), userID)

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Throttled", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, &types.ProvisionedThroughputExceededException{})

		store := New(mockClient, testTables)
		_, err := store.GetAccount(context.Background(), userID)

		assert.ErrorIs(t, err, storage.ErrUnavailable)
		assert.True(t, storage.IsRetryable(err))
		mockClient.AssertExpectations(t)
	})
}
