package websockets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/caronaexpress/pkg/discovery"
	"github.com/chris/caronaexpress/pkg/handlers/respond"
	"github.com/chris/caronaexpress/pkg/mapping"
	"github.com/chris/caronaexpress/pkg/websockets"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler handles API Gateway WebSocket connections.
type Handler struct {
	connManager websockets.ConnectionManager
	logger      *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(connManager websockets.ConnectionManager, logger *slog.Logger) *Handler {
	return &Handler{
		connManager: connManager,
		logger:      logger,
	}
}

// HandleConnect handles new client connections. The account id comes from
// the Lambda authorizer's principal.
func (h *Handler) HandleConnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID
	accountID := principalOf(request.RequestContext.Authorizer)
	if accountID == "" {
		h.logger.Warn("connection without principal", slog.String("connection_id", connectionID))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusUnauthorized}, nil
	}
	h.logger.Info("client connected", slog.String("connection_id", connectionID), slog.String("account_id", accountID))

	if err := h.connManager.AddConnection(ctx, connectionID, accountID); err != nil {
		h.logger.Error("failed to save connection ID", slog.Any("error", err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDisconnect handles client disconnections.
func (h *Handler) HandleDisconnect(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Info("client disconnected", slog.String("connection_id", request.RequestContext.ConnectionID))

	if err := h.connManager.RemoveConnection(ctx, request.RequestContext.ConnectionID); err != nil {
		h.logger.Error("failed to delete connection ID", slog.Any("error", err))
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, err
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// HandleDefault handles messages sent from a client. Clients only listen.
func (h *Handler) HandleDefault(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Debug("ignoring client message", slog.String("connection_id", request.RequestContext.ConnectionID))
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// Route dispatches on the route key API Gateway assigned to the request.
func (h *Handler) Route(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch request.RequestContext.RouteKey {
	case "$connect":
		return h.HandleConnect(ctx, request)
	case "$disconnect":
		return h.HandleDisconnect(ctx, request)
	default:
		return h.HandleDefault(ctx, request)
	}
}

func principalOf(authorizer interface{}) string {
	claims, ok := authorizer.(map[string]interface{})
	if !ok {
		return ""
	}
	id, _ := claims["principalId"].(string)
	return id
}

// Watcher streams discovery results.
type Watcher interface {
	Watch(ctx context.Context, f discovery.Filters) (<-chan discovery.Snapshot, error)
}

// LiveHandler serves GET /rides/live: it streams the rides matching the
// query filters. When connManager is set the socket is also registered as
// one of the caller's connections, so balance and ride updates published
// through the Hub reach it.
type LiveHandler struct {
	connManager websockets.ConnectionManager
	hub         *websockets.Hub
	watcher     Watcher
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// NewLiveHandler creates a LiveHandler.
func NewLiveHandler(connManager websockets.ConnectionManager, hub *websockets.Hub, watcher Watcher, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		connManager: connManager,
		hub:         hub,
		watcher:     watcher,
		logger:      logger,
		upgrader: websocket.Upgrader{
			// Allow all origins; authentication is the bearer token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and streams until the client goes away.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filters := discovery.ParseFilters(discovery.RawFilters{
		Destination: q.Get("destination"),
		Date:        q.Get("date"),
		Time:        q.Get("time"),
		PriceMin:    q.Get("priceMin"),
		PriceMax:    q.Get("priceMax"),
		DistanceMin: q.Get("distanceMin"),
		DistanceMax: q.Get("distanceMax"),
	})

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", slog.Any("error", err))
		return
	}
	defer conn.Close()

	// The request context is not reliably cancelled once the connection is hijacked.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	connectionID := uuid.New().String()
	logger := h.logger.With(slog.String("connection_id", connectionID), slog.String("account_id", id.AccountID))
	h.hub.Register(connectionID, conn)
	defer h.hub.Unregister(connectionID)

	if h.connManager != nil {
		if err := h.connManager.AddConnection(ctx, connectionID, id.AccountID); err != nil {
			logger.Error("failed to save local connection ID", slog.Any("error", err))
			return
		}
		defer func() {
			if err := h.connManager.RemoveConnection(ctx, connectionID); err != nil {
				logger.Error("failed to delete local connection ID", slog.Any("error", err))
			}
		}()
	}
	logger.Info("live client connected")

	snapshots, err := h.watcher.Watch(ctx, filters)
	if err != nil {
		logger.Error("failed to start live search", slog.Any("error", err))
		return
	}

	// Reading is how a close from the client is noticed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("unexpected close error", slog.Any("error", err))
				}
				return
			}
		}
	}()

	for snap := range snapshots {
		if err := h.hub.WriteJSON(connectionID, messageFor(snap)); err != nil {
			logger.Info("live client gone", slog.Any("error", err))
			return
		}
	}
	logger.Info("live client disconnected")
}

func messageFor(snap discovery.Snapshot) websockets.Message {
	if snap.Err != nil {
		status, code := respond.Status(snap.Err)
		return websockets.Message{
			Type:    websockets.MessageTypeError,
			Payload: map[string]any{"status": status, "code": code, "message": snap.Err.Error()},
		}
	}
	return websockets.Message{Type: websockets.MessageTypeRides, Payload: mapping.ToApiRides(snap.Rides)}
}
