package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage"
)

// CreateDeposit records a deposit awaiting payment confirmation.
func (s *Store) CreateDeposit(ctx context.Context, deposit *models.Deposit) error {
	depositAV, err := attributevalue.MarshalMap(deposit)
	if err != nil {
		return fmt.Errorf("failed to marshal deposit: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Deposits),
		Item:                depositAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("deposit %s: %w", deposit.ID, storage.ErrAlreadyExists)
		}
		return unavailable("failed to create deposit in DynamoDB", err)
	}
	return nil
}

// GetDeposit retrieves a deposit by ID.
func (s *Store) GetDeposit(ctx context.Context, depositID string) (*models.Deposit, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Deposits),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: depositID}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, unavailable("failed to get deposit from DynamoDB", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("deposit %s: %w", depositID, storage.ErrDepositNotFound)
	}

	var deposit models.Deposit
	if err := attributevalue.UnmarshalMap(result.Item, &deposit); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deposit: %w", err)
	}
	return &deposit, nil
}

// GetDepositByPaymentRef looks a deposit up by the gateway's payment reference.
func (s *Store) GetDepositByPaymentRef(ctx context.Context, paymentRef string) (*models.Deposit, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Deposits),
		IndexName:              aws.String(depositsByPaymentRef),
		KeyConditionExpression: aws.String("payment_ref = :ref"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref": &types.AttributeValueMemberS{Value: paymentRef},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, unavailable("failed to query deposits by payment reference", err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("deposit with payment %s: %w", paymentRef, storage.ErrDepositNotFound)
	}

	var deposit models.Deposit
	if err := attributevalue.UnmarshalMap(result.Items[0], &deposit); err != nil {
		return nil, fmt.Errorf("failed to unmarshal deposit: %w", err)
	}
	return &deposit, nil
}

// FailDeposit marks a PENDING deposit as FAILED.
func (s *Store) FailDeposit(ctx context.Context, depositID string) error {
	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Deposits),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: depositID}},
		UpdateExpression:    aws.String("SET #status = :failed, updated_at = :now"),
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed":  &types.AttributeValueMemberS{Value: string(models.DepositFailed)},
			":pending": &types.AttributeValueMemberS{Value: string(models.DepositPending)},
			":now":     nowAV,
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			if condCheckFailed.Item == nil {
				return fmt.Errorf("deposit %s: %w", depositID, storage.ErrDepositNotFound)
			}
			return fmt.Errorf("deposit %s: %w", depositID, storage.ErrDepositNotPending)
		}
		return unavailable("failed to mark deposit as failed", err)
	}
	return nil
}
