package application

import (
	"context"

	"github.com/dmehra2102/marketplace-orders/internal/inventory/domain"
)

type ProductRepository interface {
	Insert(ctx context.Context, p domain.Product) error
	Get(ctx context.Context, id string) (domain.Product, error)
	// DecreaseStock subtracts quantity only when enough stock is left.
	// It returns ErrInsufficientStock without writing otherwise.
	DecreaseStock(ctx context.Context, id string, quantity int) (domain.Product, error)
}
