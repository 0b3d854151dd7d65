package dynamodb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	existing map[string]bool
	inputs   []*dynamodb.CreateTableInput
}

func (f *fakeCreator) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.existing[aws.ToString(in.TableName)] {
		return nil, &types.ResourceInUseException{Message: aws.String("table exists")}
	}
	return &dynamodb.CreateTableOutput{}, nil
}

func TestCreateTables(t *testing.T) {
	t.Run("Creates Missing Tables", func(t *testing.T) {
		creator := &fakeCreator{existing: map[string]bool{"accounts": true}}

		created, err := CreateTables(context.Background(), creator, testTables)

		require.NoError(t, err)
		assert.Equal(t, []string{"rides", "ledger", "deposits", "connections"}, created)
		assert.Len(t, creator.inputs, 5)
	})

	t.Run("Indexes Cover Queries", func(t *testing.T) {
		indexes := map[string]bool{}
		for _, def := range TableDefinitions(testTables) {
			for _, gsi := range def.GlobalSecondaryIndexes {
				indexes[aws.ToString(gsi.IndexName)] = true
			}
		}
		for _, name := range []string{ridesByStatusIndex, ridesByDriverIndex, ledgerIndex, ledgerByAccountIndex, depositsByPaymentRef, connectionsIndex, connectionsByAccount} {
			assert.True(t, indexes[name], name)
		}
	})
}
