package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmehra2102/marketplace-orders/internal/chat/application"
	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/dmehra2102/marketplace-orders/pkg/httpx"
	"github.com/gorilla/websocket"
)

// Client frame types.
const (
	FrameSubscribe   = "subscribeToOrder"
	FrameUnsubscribe = "unsubscribeFromOrder"
	FrameSend        = "sendMessage"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 16 << 10
	sendBuffer     = 64
)

type inbound struct {
	Type    string             `json:"type"`
	OrderID string             `json:"orderId"`
	Message domain.ChatMessage `json:"message"`
}

type Handler struct {
	log      *slog.Logger
	channel  *application.Channel
	upgrader websocket.Upgrader
}

// NewHandler serves the chat socket. allowedOrigins uses the same rules as
// the CORS middleware; an empty list accepts any origin.
func NewHandler(log *slog.Logger, channel *application.Channel, allowedOrigins []string) *Handler {
	return &Handler{
		log:     log,
		channel: channel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowedOrigins) == 0 {
					return true
				}
				return httpx.OriginAllowed(allowedOrigins, origin)
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newConn(conn)
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer func() {
		cancel()
		h.channel.Disconnect(c)
		c.close()
	}()

	go c.writeLoop(h.log)
	h.readLoop(ctx, c)
}

func (h *Handler) readLoop(ctx context.Context, c *conn) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame inbound
		if err := c.ws.ReadJSON(&frame); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) && !errors.Is(err, websocket.ErrCloseSent) {
				h.log.Debug("websocket read ended", "err", err)
			}
			return
		}

		switch frame.Type {
		case FrameSubscribe:
			if err := h.channel.Subscribe(frame.OrderID, c); err != nil {
				c.Deliver(errorEvent(frame.OrderID, err))
				continue
			}
			c.Deliver(application.Event{Type: application.EventSubscribed, OrderID: frame.OrderID})
		case FrameUnsubscribe:
			h.channel.Unsubscribe(frame.OrderID, c)
			c.Deliver(application.Event{Type: application.EventUnsubscribed, OrderID: frame.OrderID})
		case FrameSend:
			if err := h.channel.Publish(ctx, frame.OrderID, frame.Message); err != nil {
				c.Deliver(errorEvent(frame.OrderID, err))
			}
		default:
			c.Deliver(application.Event{Type: application.EventError, OrderID: frame.OrderID, Code: "unknown_frame", Error: "unknown frame type " + frame.Type})
		}
	}
}

func errorEvent(orderID string, err error) application.Event {
	_, code := httpx.Classify(err)
	ev := application.Event{Type: application.EventError, OrderID: orderID, Code: code, Error: err.Error()}
	if v, ok := apperr.AsValidation(err); ok {
		ev.Fields = v.Fields
	}
	if code == httpx.CodeInternal {
		ev.Error = "message could not be stored"
	}
	return ev
}

// conn is one socket. Frames are queued by Deliver and written by a single
// writer goroutine.
type conn struct {
	ws   *websocket.Conn
	send chan application.Event
	done chan struct{}
	once sync.Once
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws, send: make(chan application.Event, sendBuffer), done: make(chan struct{})}
}

func (c *conn) Deliver(ev application.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		c.close()
		return false
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *conn) writeLoop(log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(ev); err != nil {
				log.Debug("websocket write failed", "err", err)
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
