package websockets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/discovery"
	"github.com/chris/caronaexpress/pkg/logging"
	"github.com/chris/caronaexpress/pkg/middleware"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/storage/memory"
	"github.com/chris/caronaexpress/pkg/websockets"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsRequest(routeKey, connectionID string, authorizer interface{}) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			RouteKey:     routeKey,
			ConnectionID: connectionID,
			Authorizer:   authorizer,
		},
	}
}

func TestLambdaHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("Connect And Disconnect", func(t *testing.T) {
		store := memory.New()
		h := NewHandler(store, logging.Discard())

		resp, err := h.Route(ctx, wsRequest("$connect", "c1", map[string]interface{}{"principalId": "ana"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		conns, err := store.GetAccountConnections(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, []string{"c1"}, conns)

		resp, err = h.Route(ctx, wsRequest("$disconnect", "c1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		conns, err = store.GetAllConnections(ctx)
		require.NoError(t, err)
		assert.Empty(t, conns)
	})

	t.Run("No Principal", func(t *testing.T) {
		store := memory.New()
		h := NewHandler(store, logging.Discard())

		resp, err := h.Route(ctx, wsRequest("$connect", "c1", nil))

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		conns, _ := store.GetAllConnections(ctx)
		assert.Empty(t, conns)
	})

	t.Run("Default", func(t *testing.T) {
		h := NewHandler(memory.New(), logging.Discard())

		resp, err := h.Route(ctx, wsRequest("sendMessage", "c1", nil))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func withIdentity(accountID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), middleware.Identity{AccountID: accountID})))
	})
}

func TestLiveHandler(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.CreateRide(context.Background(), &models.Ride{
		ID:           "r1",
		DriverID:     "driver",
		Origin:       "Recife - PE",
		Destination:  "Caruaru - PE",
		PricePerSeat: models.MustMoney("25"),
		SeatsTotal:   2,
		Passengers:   []models.Passenger{},
		Status:       models.RideActive,
		CreatedAt:    time.Now(),
	}))
	hub := websockets.NewHub()
	search := discovery.NewService(store, discovery.WithLogger(logging.Discard()), discovery.WithPollInterval(time.Hour))
	live := NewLiveHandler(store, hub, search, logging.Discard())

	srv := httptest.NewServer(withIdentity("ana", live))
	defer srv.Close()

	t.Run("Streams Current Result", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/rides/live?destination=caruaru"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var msg struct {
			Type    websockets.MessageType `json:"type"`
			Payload []api.Ride             `json:"payload"`
		}
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, websockets.MessageTypeRides, msg.Type)
		require.Len(t, msg.Payload, 1)
		assert.Equal(t, "r1", msg.Payload[0].Id)

		assert.Eventually(t, func() bool {
			conns, _ := store.GetAccountConnections(context.Background(), "ana")
			return len(conns) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		live.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rides/live", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
