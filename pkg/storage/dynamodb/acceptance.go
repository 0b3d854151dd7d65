package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/caronaexpress/pkg/models"
)

// CommitAcceptance appends the passenger to the ride and moves the fare in one
// TransactWriteItems call. The ride update is conditioned on the version the
// caller validated against, so any concurrent acceptance cancels this one.
func (s *Store) CommitAcceptance(ctx context.Context, a *models.Acceptance) error {
	passengerAV, err := attributevalue.MarshalMap(a.Passenger)
	if err != nil {
		return fmt.Errorf("failed to marshal passenger: %w", err)
	}

	rideUpdate := types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.Tables.Rides),
			Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: a.Ride.ID}},
			UpdateExpression: aws.String("SET passengers = list_append(if_not_exists(passengers, :empty), :passenger), " +
				"version = version + :inc ADD passenger_ids :passenger_ids"),
			ConditionExpression: aws.String("version = :version AND #status = :active AND NOT contains(passenger_ids, :passenger_id)"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":empty":         &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
				":passenger":     &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: passengerAV}}},
				":passenger_ids": &types.AttributeValueMemberSS{Value: []string{a.Passenger.AccountID}},
				":passenger_id":  &types.AttributeValueMemberS{Value: a.Passenger.AccountID},
				":inc":           &types.AttributeValueMemberN{Value: "1"},
				":version":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", a.Ride.Version)},
				":active":        &types.AttributeValueMemberS{Value: string(models.RideActive)},
			},
			ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
		},
	}

	transferItems, transferRoles, err := s.transferItems(&a.Transfer)
	if err != nil {
		return err
	}

	items := append([]types.TransactWriteItem{rideUpdate}, transferItems...)
	roles := append([]itemRole{roleRide}, transferRoles...)

	return s.transactWrite(ctx, items, roles, fmt.Sprintf("failed to commit acceptance of ride %s", a.Ride.ID))
}
