package memory

import (
	"context"
	"sync"

	"github.com/dmehra2102/marketplace-orders/internal/inventory/domain"
)

// Repository keeps products in process memory.
type Repository struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func NewRepository() *Repository {
	return &Repository{products: make(map[string]domain.Product)}
}

func (r *Repository) Insert(_ context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p
	return nil
}

func (r *Repository) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *Repository) DecreaseStock(_ context.Context, id string, quantity int) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if err := p.Decrease(quantity); err != nil {
		return domain.Product{}, err
	}
	r.products[id] = p
	return p, nil
}
