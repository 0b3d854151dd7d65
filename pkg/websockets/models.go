package websockets

import "github.com/chris/caronaexpress/pkg/models"

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeBalanceUpdate tells an account its balance changed.
	MessageTypeBalanceUpdate MessageType = "balanceUpdate"
	// MessageTypeRideUpdate tells everyone a ride was created, filled up or closed.
	MessageTypeRideUpdate MessageType = "rideUpdate"
	// MessageTypeRides carries a full live search result.
	MessageTypeRides MessageType = "rides"
	// MessageTypeError reports a failed live search refresh.
	MessageTypeError MessageType = "error"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// BalanceUpdatePayload is the payload for a balanceUpdate message.
type BalanceUpdatePayload struct {
	AccountID string       `json:"account_id"`
	Reason    string       `json:"reason"`
	Balance   models.Money `json:"balance"`
}

// RideUpdatePayload is the payload for a rideUpdate message.
type RideUpdatePayload struct {
	RideID         string            `json:"ride_id"`
	Event          string            `json:"event"`
	Status         models.RideStatus `json:"status"`
	PassengerCount int               `json:"passenger_count"`
	SeatsTotal     int               `json:"seats_total"`
	Full           bool              `json:"full"`
}
