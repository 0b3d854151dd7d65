package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage"
)

// CreateRide stores a new ride offering.
func (s *Store) CreateRide(ctx context.Context, ride *models.Ride) error {
	if ride.Passengers == nil {
		ride.Passengers = []models.Passenger{}
	}
	rideAV, err := attributevalue.MarshalMap(ride)
	if err != nil {
		return fmt.Errorf("failed to marshal ride: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Rides),
		Item:                rideAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("ride %s: %w", ride.ID, storage.ErrAlreadyExists)
		}
		return unavailable("failed to create ride in DynamoDB", err)
	}

	return nil
}

// GetRide retrieves a ride by ID with a strongly consistent read.
func (s *Store) GetRide(ctx context.Context, rideID string) (*models.Ride, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Rides),
		Key:            map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: rideID}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, unavailable("failed to get ride from DynamoDB", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("ride %s: %w", rideID, storage.ErrRideNotFound)
	}

	var ride models.Ride
	if err := attributevalue.UnmarshalMap(result.Item, &ride); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ride: %w", err)
	}

	return &ride, nil
}

// ActiveRides queries the status index page by page as the caller iterates.
func (s *Store) ActiveRides(ctx context.Context) iter.Seq2[models.Ride, error] {
	return func(yield func(models.Ride, error) bool) {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.Tables.Rides),
			IndexName:              aws.String(ridesByStatusIndex),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(models.RideActive)},
			},
			ScanIndexForward: aws.Bool(false), // Newest rides first
		}

		for {
			result, err := s.Client.Query(ctx, input)
			if err != nil {
				yield(models.Ride{}, unavailable("failed to query active rides", err))
				return
			}

			var page []models.Ride
			if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
				yield(models.Ride{}, fmt.Errorf("failed to unmarshal rides: %w", err))
				return
			}
			for _, ride := range page {
				if !yield(ride, nil) {
					return
				}
			}

			if len(result.LastEvaluatedKey) == 0 {
				return
			}
			input.ExclusiveStartKey = result.LastEvaluatedKey
		}
	}
}

// ListRidesByDriver returns the rides offered by one driver, newest first.
func (s *Store) ListRidesByDriver(ctx context.Context, driverID string) ([]models.Ride, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Rides),
		IndexName:              aws.String(ridesByDriverIndex),
		KeyConditionExpression: aws.String("driver_id = :driver"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":driver": &types.AttributeValueMemberS{Value: driverID},
		},
		ScanIndexForward: aws.Bool(false),
	}

	var rides []models.Ride
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, unavailable("failed to query rides by driver", err)
		}
		var page []models.Ride
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rides: %w", err)
		}
		rides = append(rides, page...)
		if len(result.LastEvaluatedKey) == 0 {
			return rides, nil
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// ListRidesByPassenger scans for rides whose roster contains the account.
func (s *Store) ListRidesByPassenger(ctx context.Context, accountID string) ([]models.Ride, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.Tables.Rides),
		FilterExpression: aws.String("contains(passenger_ids, :account)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":account": &types.AttributeValueMemberS{Value: accountID},
		},
	}

	var rides []models.Ride
	for {
		result, err := s.Client.Scan(ctx, input)
		if err != nil {
			return nil, unavailable("failed to scan rides by passenger", err)
		}
		var page []models.Ride
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal rides: %w", err)
		}
		rides = append(rides, page...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	sortNewestFirst(rides)
	return rides, nil
}

// CloseRide moves an ACTIVE ride to CLOSED, guarded by its version.
func (s *Store) CloseRide(ctx context.Context, rideID string, expectedVersion int64) error {
	nowAV, err := attributevalue.Marshal(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Rides),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: rideID}},
		UpdateExpression:    aws.String("SET #status = :closed, closed_at = :now, version = version + :inc"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status = :active AND version = :version"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":closed":  &types.AttributeValueMemberS{Value: string(models.RideClosed)},
			":active":  &types.AttributeValueMemberS{Value: string(models.RideActive)},
			":now":     nowAV,
			":inc":     &types.AttributeValueMemberN{Value: "1"},
			":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expectedVersion)},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			if condCheckFailed.Item == nil {
				return fmt.Errorf("ride %s: %w", rideID, storage.ErrRideNotFound)
			}
			return fmt.Errorf("ride %s: %w", rideID, storage.ErrConflict)
		}
		return unavailable("failed to close ride", err)
	}

	return nil
}

func sortNewestFirst(rides []models.Ride) {
	sort.SliceStable(rides, func(i, j int) bool {
		return rides[i].CreatedAt.After(rides[j].CreatedAt)
	})
}
