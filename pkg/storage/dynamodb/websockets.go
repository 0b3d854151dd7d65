package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// WebSocketConnection represents a record in the WebSocket connections table.
type WebSocketConnection struct {
	ConnectionID string `dynamodbav:"connection_id"`
	AccountID    string `dynamodbav:"account_id"`
	PK           string `dynamodbav:"pk"`
}

// AddConnection saves a WebSocket connection ID and the account that opened it.
func (s *Store) AddConnection(ctx context.Context, connectionID, accountID string) error {
	conn := WebSocketConnection{ConnectionID: connectionID, AccountID: accountID, PK: connectionsPartition}
	item, err := attributevalue.MarshalMap(conn)
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Connections),
		Item:      item,
	})
	if err != nil {
		return unavailable("failed to put connection", err)
	}

	return nil
}

// RemoveConnection deletes a WebSocket connection ID from the database.
func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.Tables.Connections),
		Key:       map[string]types.AttributeValue{"connection_id": &types.AttributeValueMemberS{Value: connectionID}},
	})
	if err != nil {
		return unavailable("failed to delete connection", err)
	}

	return nil
}

// GetAllConnections retrieves every open connection ID.
func (s *Store) GetAllConnections(ctx context.Context) ([]string, error) {
	return s.queryConnections(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Connections),
		IndexName:              aws.String(connectionsIndex),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: connectionsPartition},
		},
		ProjectionExpression: aws.String("connection_id"),
	})
}

// GetAccountConnections retrieves the connection IDs opened by one account.
func (s *Store) GetAccountConnections(ctx context.Context, accountID string) ([]string, error) {
	return s.queryConnections(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Connections),
		IndexName:              aws.String(connectionsByAccount),
		KeyConditionExpression: aws.String("account_id = :account"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":account": &types.AttributeValueMemberS{Value: accountID},
		},
		ProjectionExpression: aws.String("connection_id"),
	})
}

func (s *Store) queryConnections(ctx context.Context, input *dynamodb.QueryInput) ([]string, error) {
	queryOutput, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, unavailable("failed to query connections table", err)
	}

	var connections []WebSocketConnection
	if err := attributevalue.UnmarshalListOfMaps(queryOutput.Items, &connections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connections: %w", err)
	}

	connectionIDs := make([]string, len(connections))
	for i, conn := range connections {
		connectionIDs[i] = conn.ConnectionID
	}

	return connectionIDs, nil
}
