package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableCreator is the part of the DynamoDB client that provisions tables.
type TableCreator interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

func stringAttr(name string) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
}

func keySchema(hash, rng string) []types.KeySchemaElement {
	keys := []types.KeySchemaElement{{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash}}
	if rng != "" {
		keys = append(keys, types.KeySchemaElement{AttributeName: aws.String(rng), KeyType: types.KeyTypeRange})
	}
	return keys
}

func index(name, hash, rng string) types.GlobalSecondaryIndex {
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(name),
		KeySchema:  keySchema(hash, rng),
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

// TableDefinitions describes every table and index the store queries.
func TableDefinitions(tables Tables) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName:            aws.String(tables.Accounts),
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("user_id")},
			KeySchema:            keySchema("user_id", ""),
			BillingMode:          types.BillingModePayPerRequest,
		},
		{
			TableName:            aws.String(tables.Rides),
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("id"), stringAttr("status"), stringAttr("driver_id"), stringAttr("created_at")},
			KeySchema:            keySchema("id", ""),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				index(ridesByStatusIndex, "status", "created_at"),
				index(ridesByDriverIndex, "driver_id", "created_at"),
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName:            aws.String(tables.Ledger),
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("entry_id"), stringAttr("gsi1pk"), stringAttr("account_id"), stringAttr("timestamp")},
			KeySchema:            keySchema("entry_id", ""),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				index(ledgerIndex, "gsi1pk", "timestamp"),
				index(ledgerByAccountIndex, "account_id", "timestamp"),
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName:              aws.String(tables.Deposits),
			AttributeDefinitions:   []types.AttributeDefinition{stringAttr("id"), stringAttr("payment_ref")},
			KeySchema:              keySchema("id", ""),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{index(depositsByPaymentRef, "payment_ref", "")},
			BillingMode:            types.BillingModePayPerRequest,
		},
		{
			TableName:            aws.String(tables.Connections),
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("connection_id"), stringAttr("pk"), stringAttr("account_id")},
			KeySchema:            keySchema("connection_id", ""),
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				index(connectionsIndex, "pk", ""),
				index(connectionsByAccount, "account_id", ""),
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	}
}

// CreateTables provisions every table, skipping the ones that already exist.
// It returns the names of the tables it created.
func CreateTables(ctx context.Context, client TableCreator, tables Tables) ([]string, error) {
	var created []string
	for _, def := range TableDefinitions(tables) {
		_, err := client.CreateTable(ctx, def)
		var inUse *types.ResourceInUseException
		switch {
		case errors.As(err, &inUse):
			continue
		case err != nil:
			return created, fmt.Errorf("failed to create table %s: %w", aws.ToString(def.TableName), err)
		}
		created = append(created, aws.ToString(def.TableName))
	}
	return created, nil
}
