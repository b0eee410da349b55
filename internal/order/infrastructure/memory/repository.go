package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Repository keeps orders in process memory. It backs local runs without
// MongoDB (ORDER_STORE=memory) and handler tests.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewRepository() *Repository {
	return &Repository{orders: make(map[string]domain.Order)}
}

func (r *Repository) Insert(_ context.Context, o domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o.ID = primitive.NewObjectID().Hex()
	if o.ChatHistory == nil {
		o.ChatHistory = []domain.ChatMessage{}
	}
	r.orders[o.ID] = clone(o)
	return clone(o), nil
}

func (r *Repository) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return clone(o), nil
}

func (r *Repository) List(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.BuyerID != "" && o.BuyerID != filter.BuyerID {
			continue
		}
		if filter.SellerID != "" && o.SellerID != filter.SellerID {
			continue
		}
		out = append(out, clone(o))
	}
	slices.SortFunc(out, func(a, b domain.Order) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *Repository) FindInquiry(_ context.Context, sellerID, productID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.Status != domain.StatusInquiry || o.SellerID != sellerID {
			continue
		}
		for _, p := range o.Products {
			if p.ProductID == productID {
				found := clone(o)
				return &found, nil
			}
		}
	}
	return nil, nil
}

func (r *Repository) Update(_ context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	o = patch.Apply(o)
	r.orders[id] = o
	return clone(o), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *Repository) AppendMessage(_ context.Context, id string, msg domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.ChatHistory = append(slices.Clone(o.ChatHistory), msg)
	r.orders[id] = o
	return nil
}

func clone(o domain.Order) domain.Order {
	o.Products = slices.Clone(o.Products)
	o.ChatHistory = slices.Clone(o.ChatHistory)
	if o.ChatHistory == nil {
		o.ChatHistory = []domain.ChatMessage{}
	}
	return o
}
