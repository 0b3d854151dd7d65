package websockets

import (
	"context"
	"errors"
)

// ErrGone is returned by a Sender when the connection no longer exists.
var ErrGone = errors.New("connection gone")

// ConnectionManager defines the interface for managing WebSocket connections.
type ConnectionManager interface {
	AddConnection(ctx context.Context, connectionID, accountID string) error
	RemoveConnection(ctx context.Context, connectionID string) error
}

// ConnectionLister finds the connections a message should go to.
type ConnectionLister interface {
	GetAllConnections(ctx context.Context) ([]string, error)
	GetAccountConnections(ctx context.Context, accountID string) ([]string, error)
}

// ConnectionStore is everything the publisher needs from storage.
type ConnectionStore interface {
	ConnectionManager
	ConnectionLister
}

// Sender delivers one encoded message to one connection.
type Sender interface {
	Send(ctx context.Context, connectionID string, data []byte) error
}

// Publisher defines the interface for publishing messages to WebSocket clients.
// With no account ids the message goes to every connection.
type Publisher interface {
	Publish(ctx context.Context, message Message, accountIDs ...string) error
}
