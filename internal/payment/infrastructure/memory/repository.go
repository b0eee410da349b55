package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/outbox"
)

// Repository keeps payments and their outbox records in memory. It backs
// PAYMENT_STORE=memory runs, where no relay publishes the records.
type Repository struct {
	mu       sync.RWMutex
	payments map[string]domain.Payment // by order id
	events   []outbox.Record
}

func NewRepository() *Repository {
	return &Repository{payments: make(map[string]domain.Payment)}
}

func (r *Repository) CreateWithOutbox(_ context.Context, p domain.Payment, ev outbox.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.OrderID]; ok {
		return domain.ErrDuplicatePayment
	}
	r.payments[p.OrderID] = p
	r.events = append(r.events, ev)
	return nil
}

func (r *Repository) GetByOrderID(_ context.Context, orderID string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return p, nil
}

func (r *Repository) List(_ context.Context) ([]domain.Payment, error) {
	return r.filter(func(domain.Payment) bool { return true }), nil
}

func (r *Repository) ListByStatus(_ context.Context, status domain.Status) ([]domain.Payment, error) {
	return r.filter(func(p domain.Payment) bool { return p.Status == status }), nil
}

func (r *Repository) filter(keep func(domain.Payment) bool) []domain.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Payment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (r *Repository) UpdateStatusWithOutbox(_ context.Context, orderID string, status domain.Status, at time.Time, ev outbox.Record) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	r.payments[orderID] = p
	r.events = append(r.events, ev)
	return p, nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for orderID, p := range r.payments {
		if p.ID == id {
			delete(r.payments, orderID)
			return nil
		}
	}
	return domain.ErrPaymentNotFound
}

// Events returns the outbox records written so far.
func (r *Repository) Events() []outbox.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events)
}
