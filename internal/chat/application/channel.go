package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MessageStore persists a chat message into the order's history and returns
// the message as stored.
type MessageStore interface {
	AppendMessage(ctx context.Context, orderID string, msg domain.ChatMessage) (domain.ChatMessage, error)
}

// Channel is the room-scoped chat: a message reaches subscribers only after
// it was stored.
type Channel struct {
	log    *slog.Logger
	hub    *Hub
	store  MessageStore
	tracer trace.Tracer
}

func NewChannel(log *slog.Logger, hub *Hub, store MessageStore) *Channel {
	return &Channel{log: log, hub: hub, store: store, tracer: otel.Tracer("chat")}
}

// Subscribe joins s to the room of orderID. Membership is not checked.
func (c *Channel) Subscribe(orderID string, s Subscriber) error {
	if orderID == "" {
		return apperr.Invalid("orderId", "must not be empty")
	}
	c.hub.Subscribe(orderID, s)
	c.log.Debug("chat subscribe", "order_id", orderID, "subscribers", c.hub.Subscribers(orderID))
	return nil
}

func (c *Channel) Unsubscribe(orderID string, s Subscriber) {
	c.hub.Unsubscribe(orderID, s)
}

func (c *Channel) Disconnect(s Subscriber) {
	c.hub.Leave(s)
}

// Publish stores msg on the order and then fans it out to the room, sender
// included. On a store error nothing is broadcast and the error is returned.
func (c *Channel) Publish(ctx context.Context, orderID string, msg domain.ChatMessage) error {
	ctx, span := c.tracer.Start(ctx, "chat.Publish", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	if orderID == "" {
		return apperr.Invalid("orderId", "must not be empty")
	}

	saved, err := c.store.AppendMessage(ctx, orderID, msg)
	if err != nil {
		span.RecordError(err)
		c.log.Warn("chat message not stored", "order_id", orderID, "sender_id", msg.SenderID, "err", err)
		return err
	}

	n := c.hub.Broadcast(orderID, Event{Type: EventOrderMessage, OrderID: orderID, Message: &saved})
	c.log.Debug("chat message broadcast", "order_id", orderID, "delivered", n)
	return nil
}
