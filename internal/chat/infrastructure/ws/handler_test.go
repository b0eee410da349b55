package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmehra2102/marketplace-orders/internal/chat/application"
	orderapp "github.com/dmehra2102/marketplace-orders/internal/order/application"
	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"github.com/dmehra2102/marketplace-orders/internal/order/infrastructure/memory"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (string, string) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewRepository()
	orders := orderapp.NewService(log, repo, nil, clock.NewSystem())
	o, err := orders.GetOrCreateInquiry(context.Background(),
		domain.Product{ID: "p1", OwnerID: "seller-1", Name: "Lamp", Price: 10}, "buyer-1", 1)
	require.NoError(t, err)

	channel := application.NewChannel(log, application.NewHub(log), orders)
	srv := httptest.NewServer(NewHandler(log, channel, nil))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), o.ID
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func read(t *testing.T, c *websocket.Conn) application.Event {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev application.Event
	require.NoError(t, c.ReadJSON(&ev))
	return ev
}

func subscribe(t *testing.T, c *websocket.Conn, orderID string) {
	t.Helper()
	require.NoError(t, c.WriteJSON(map[string]string{"type": FrameSubscribe, "orderId": orderID}))
	ev := read(t, c)
	require.Equal(t, application.EventSubscribed, ev.Type)
	require.Equal(t, orderID, ev.OrderID)
}

func send(t *testing.T, c *websocket.Conn, orderID, text string) {
	t.Helper()
	require.NoError(t, c.WriteJSON(map[string]any{
		"type":    FrameSend,
		"orderId": orderID,
		"message": map[string]string{"text": text, "senderId": "buyer-1", "role": "buyer"},
	}))
}

func TestChatSocket_BroadcastToRoom(t *testing.T) {
	url, orderID := setup(t)
	buyer, seller := dial(t, url), dial(t, url)
	subscribe(t, buyer, orderID)
	subscribe(t, seller, orderID)

	send(t, buyer, orderID, "is it still available?")

	for _, c := range []*websocket.Conn{buyer, seller} {
		ev := read(t, c)
		assert.Equal(t, application.EventOrderMessage, ev.Type)
		assert.Equal(t, orderID, ev.OrderID)
		require.NotNil(t, ev.Message)
		assert.Equal(t, "is it still available?", ev.Message.Text)
		assert.Equal(t, domain.RoleBuyer, ev.Message.Role)
	}
}

func TestChatSocket_ErrorsGoToSenderOnly(t *testing.T) {
	url, orderID := setup(t)
	buyer, seller := dial(t, url), dial(t, url)
	subscribe(t, buyer, orderID)
	subscribe(t, seller, orderID)

	send(t, buyer, "000000000000000000000000", "hello?")
	ev := read(t, buyer)
	assert.Equal(t, application.EventError, ev.Type)
	assert.Equal(t, "not_found", ev.Code)

	require.NoError(t, buyer.WriteJSON(map[string]any{
		"type":    FrameSend,
		"orderId": orderID,
		"message": map[string]string{"text": "", "senderId": "buyer-1", "role": "buyer"},
	}))
	ev = read(t, buyer)
	assert.Equal(t, "validation_failed", ev.Code)
	assert.NotEmpty(t, ev.Fields)

	// The seller's next frame is the valid message, not an error.
	send(t, buyer, orderID, "ok")
	ev = read(t, seller)
	assert.Equal(t, application.EventOrderMessage, ev.Type)
	assert.Equal(t, "ok", ev.Message.Text)
}

func TestChatSocket_UnsubscribeStopsDelivery(t *testing.T) {
	url, orderID := setup(t)
	buyer, seller := dial(t, url), dial(t, url)
	subscribe(t, buyer, orderID)
	subscribe(t, seller, orderID)

	require.NoError(t, seller.WriteJSON(map[string]string{"type": FrameUnsubscribe, "orderId": orderID}))
	assert.Equal(t, application.EventUnsubscribed, read(t, seller).Type)

	send(t, buyer, orderID, "anyone?")
	assert.Equal(t, "anyone?", read(t, buyer).Message.Text)

	require.NoError(t, seller.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var ev application.Event
	assert.Error(t, seller.ReadJSON(&ev))
}

func TestChatSocket_UnknownFrame(t *testing.T) {
	url, _ := setup(t)
	c := dial(t, url)
	require.NoError(t, c.WriteJSON(map[string]string{"type": "typing"}))
	ev := read(t, c)
	assert.Equal(t, application.EventError, ev.Type)
	assert.Equal(t, "unknown_frame", ev.Code)
}
