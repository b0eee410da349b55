package application

import (
	"log/slog"
	"sync"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
)

const (
	EventOrderMessage = "orderMessage"
	EventSubscribed   = "subscribed"
	EventUnsubscribed = "unsubscribed"
	EventError        = "error"
)

// Event is a server-to-client frame.
type Event struct {
	Type    string              `json:"type"`
	OrderID string              `json:"orderId,omitempty"`
	Message *domain.ChatMessage `json:"message,omitempty"`
	Code    string              `json:"code,omitempty"`
	Error   string              `json:"error,omitempty"`
	Fields  []apperr.FieldError `json:"fields,omitempty"`
}

// Subscriber receives room events. Deliver must not block; it returns false
// when the subscriber can no longer keep up, which removes it from every room.
type Subscriber interface {
	Deliver(ev Event) bool
}

type room struct {
	mu   sync.Mutex
	subs map[Subscriber]struct{}
	// closed is set once the room is emptied and removed from the hub.
	closed bool
}

// Hub is the registry of chat rooms, one per order id. The room map and each
// room's subscriber set have separate locks; Broadcast holds only the room lock.
type Hub struct {
	log   *slog.Logger
	mu    sync.Mutex
	rooms map[string]*room
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, rooms: make(map[string]*room)}
}

func (h *Hub) Subscribe(orderID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rm, ok := h.rooms[orderID]
	if !ok {
		rm = &room{subs: make(map[Subscriber]struct{})}
		h.rooms[orderID] = rm
	}
	rm.mu.Lock()
	rm.subs[s] = struct{}{}
	rm.mu.Unlock()
}

func (h *Hub) Unsubscribe(orderID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(orderID, s)
}

// Leave removes s from every room it joined.
func (h *Hub) Leave(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for orderID := range h.rooms {
		h.removeLocked(orderID, s)
	}
}

func (h *Hub) removeLocked(orderID string, s Subscriber) {
	rm, ok := h.rooms[orderID]
	if !ok {
		return
	}
	rm.mu.Lock()
	delete(rm.subs, s)
	empty := len(rm.subs) == 0
	if empty {
		rm.closed = true
	}
	rm.mu.Unlock()
	if empty {
		delete(h.rooms, orderID)
	}
}

// Broadcast delivers ev to every current subscriber of orderID and returns how
// many accepted it. Concurrent broadcasts to one room are delivered in the
// order they take the room lock.
func (h *Hub) Broadcast(orderID string, ev Event) int {
	h.mu.Lock()
	rm := h.rooms[orderID]
	h.mu.Unlock()
	return h.deliver(orderID, rm, ev)
}

// deliver fans ev out to rm. A room closed after it was looked up is
// replaced by the current one, so subscribers who rejoined in between still
// get the event.
func (h *Hub) deliver(orderID string, rm *room, ev Event) int {
	var (
		delivered int
		slow      []Subscriber
	)
	for rm != nil {
		rm.mu.Lock()
		if rm.closed {
			rm.mu.Unlock()
			h.mu.Lock()
			rm = h.rooms[orderID]
			h.mu.Unlock()
			continue
		}
		for s := range rm.subs {
			if s.Deliver(ev) {
				delivered++
				continue
			}
			slow = append(slow, s)
		}
		rm.mu.Unlock()
		break
	}

	for _, s := range slow {
		h.log.Warn("dropping slow chat subscriber", "order_id", orderID)
		h.Leave(s)
	}
	return delivered
}

func (h *Hub) Rooms() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

func (h *Hub) Subscribers(orderID string) int {
	h.mu.Lock()
	rm, ok := h.rooms[orderID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.subs)
}
