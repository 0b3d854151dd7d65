package websockets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
)

// PostToConnectionAPI is the part of the API Gateway management client we use.
type PostToConnectionAPI interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// APIGatewaySender sends through the API Gateway WebSocket management API.
type APIGatewaySender struct {
	client PostToConnectionAPI
}

// NewAPIGatewaySender creates a sender for the API deployed at apiEndpoint.
func NewAPIGatewaySender(ctx context.Context, apiEndpoint string) (*APIGatewaySender, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(apiEndpoint)
	})
	return &APIGatewaySender{client: client}, nil
}

// NewAPIGatewaySenderWithClient wraps an existing client.
func NewAPIGatewaySenderWithClient(client PostToConnectionAPI) *APIGatewaySender {
	return &APIGatewaySender{client: client}
}

func (s *APIGatewaySender) Send(ctx context.Context, connectionID string, data []byte) error {
	_, err := s.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})
	var goneErr *apigwtypes.GoneException
	if errors.As(err, &goneErr) {
		return ErrGone
	}
	return err
}

// DefaultPublisher is the default implementation of the Publisher interface.
type DefaultPublisher struct {
	store  ConnectionStore
	sender Sender
	logger *slog.Logger
}

// NewPublisher creates a new DefaultPublisher.
func NewPublisher(store ConnectionStore, sender Sender, logger *slog.Logger) *DefaultPublisher {
	return &DefaultPublisher{store: store, sender: sender, logger: logger}
}

var _ Publisher = (*DefaultPublisher)(nil)

// Publish sends a message to the connections of accountIDs, or to all
// connected clients when none are given.
func (p *DefaultPublisher) Publish(ctx context.Context, message Message, accountIDs ...string) error {
	connectionIDs, err := p.connections(ctx, accountIDs)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	for _, connectionID := range connectionIDs {
		err := p.sender.Send(ctx, connectionID, payload)
		if err == nil {
			continue
		}
		if errors.Is(err, ErrGone) {
			p.logger.Info("stale connection found, deleting", slog.String("connection_id", connectionID))
			if err := p.store.RemoveConnection(ctx, connectionID); err != nil {
				p.logger.Error("failed to delete stale connection", slog.Any("error", err))
			}
		} else {
			p.logger.Error("failed to post to connection", slog.String("connection_id", connectionID), slog.Any("error", err))
		}
	}

	return nil
}

func (p *DefaultPublisher) connections(ctx context.Context, accountIDs []string) ([]string, error) {
	if len(accountIDs) == 0 {
		ids, err := p.store.GetAllConnections(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get all connections: %w", err)
		}
		return ids, nil
	}

	var ids []string
	for _, accountID := range accountIDs {
		conns, err := p.store.GetAccountConnections(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to get connections for %s: %w", accountID, err)
		}
		ids = append(ids, conns...)
	}
	return ids, nil
}
