package storage

import "context"

// WebSocketManager defines the interface for storing and retrieving WebSocket connection IDs
// together with the account each connection belongs to.
type WebSocketManager interface {
	AddConnection(ctx context.Context, connectionID, accountID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
	GetAllConnections(ctx context.Context) ([]string, error)
	GetAccountConnections(ctx context.Context, accountID string) ([]string, error)
}
