package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/caronaexpress/pkg/models"
)

// transferItems builds the balance updates and ledger puts of a transfer, in
// that order, together with the role of each item.
func (s *Store) transferItems(t *models.Transfer) ([]types.TransactWriteItem, []itemRole, error) {
	amountAV, err := t.Amount.MarshalDynamoDBAttributeValue()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal amount: %w", err)
	}
	nowAV, err := attributevalue.Marshal(t.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	var (
		items []types.TransactWriteItem
		roles []itemRole
	)

	if t.FromAccountID != "" {
		items = append(items, types.TransactWriteItem{
			// Debit: the balance check is part of the write itself.
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Accounts),
				Key:                 map[string]types.AttributeValue{"user_id": &types.AttributeValueMemberS{Value: t.FromAccountID}},
				UpdateExpression:    aws.String("SET balance = balance - :amount, version = version + :inc, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(user_id) AND balance >= :amount"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":amount": amountAV,
					":inc":    &types.AttributeValueMemberN{Value: "1"},
					":now":    nowAV,
				},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			},
		})
		roles = append(roles, roleDebit)
	}

	if t.ToAccountID != "" {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Accounts),
				Key:                 map[string]types.AttributeValue{"user_id": &types.AttributeValueMemberS{Value: t.ToAccountID}},
				UpdateExpression:    aws.String("SET balance = balance + :amount, version = version + :inc, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(user_id)"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":amount": amountAV,
					":inc":    &types.AttributeValueMemberN{Value: "1"},
					":now":    nowAV,
				},
			},
		})
		roles = append(roles, roleCredit)
	}

	if t.DepositID != "" {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName:           aws.String(s.Tables.Deposits),
				Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: t.DepositID}},
				UpdateExpression:    aws.String("SET #status = :credited, updated_at = :now"),
				ConditionExpression: aws.String("#status = :pending"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":credited": &types.AttributeValueMemberS{Value: string(models.DepositCredited)},
					":pending":  &types.AttributeValueMemberS{Value: string(models.DepositPending)},
					":now":      nowAV,
				},
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			},
		})
		roles = append(roles, roleDeposit)
	}

	for _, entry := range t.Entries() {
		entryAV, err := attributevalue.MarshalMap(entry)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal ledger entry: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Ledger),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
			},
		})
		roles = append(roles, roleEntry)
	}

	return items, roles, nil
}

// ApplyTransfer executes a transfer as a single TransactWriteItems call.
func (s *Store) ApplyTransfer(ctx context.Context, t *models.Transfer) error {
	items, roles, err := s.transferItems(t)
	if err != nil {
		return err
	}
	return s.transactWrite(ctx, items, roles, "failed to execute transfer")
}

// transactWrite runs the items atomically and translates a cancellation into a storage error.
func (s *Store) transactWrite(ctx context.Context, items []types.TransactWriteItem, roles []itemRole, msg string) error {
	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var cancelled *types.TransactionCanceledException
		if errors.As(err, &cancelled) {
			return fmt.Errorf("%s: %w", msg, cancellationError(cancelled, roles))
		}
		return unavailable(msg, err)
	}
	return nil
}

// ListLedgerEntries retrieves the most recent entries across all accounts.
func (s *Store) ListLedgerEntries(ctx context.Context, limit int32) ([]models.LedgerEntry, error) {
	return s.queryEntries(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		IndexName:              aws.String(ledgerIndex),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: models.LedgerEntryPartition},
		},
		ScanIndexForward: aws.Bool(false), // Sort by timestamp in descending order
		Limit:            aws.Int32(limit),
	})
}

// ListAccountEntries retrieves the most recent entries of one account.
func (s *Store) ListAccountEntries(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error) {
	return s.queryEntries(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Ledger),
		IndexName:              aws.String(ledgerByAccountIndex),
		KeyConditionExpression: aws.String("account_id = :account"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":account": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
}

func (s *Store) queryEntries(ctx context.Context, input *dynamodb.QueryInput) ([]models.LedgerEntry, error) {
	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, unavailable("failed to query for ledger entries", err)
	}

	entries := make([]models.LedgerEntry, 0, len(result.Items))
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entries: %w", err)
	}

	return entries, nil
}
