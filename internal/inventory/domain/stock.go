package domain

import (
	"fmt"
	"time"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = fmt.Errorf("product %w", apperr.ErrNotFound)
	ErrInsufficientStock = fmt.Errorf("insufficient stock: %w", apperr.ErrConflict)
)

// DefaultDecrease is used when a decrement names no quantity.
const DefaultDecrease = 1

type Product struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	StockCount  int       `json:"stockCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p Product) Validate() error {
	v := &apperr.ValidationError{}
	if p.OwnerID == "" {
		v.Add("ownerId", "must not be empty")
	}
	if p.Name == "" {
		v.Add("name", "must not be empty")
	}
	d := decimal.NewFromFloat(p.Price)
	if d.IsNegative() || !d.Equal(d.Round(2)) {
		v.Add("price", "must be a non-negative amount with at most 2 decimal places")
	}
	if p.StockCount < 0 {
		v.Add("stockCount", "must not be negative")
	}
	return v.Err()
}

// DecreaseQuantity resolves an optional requested quantity.
func DecreaseQuantity(requested *int) (int, error) {
	if requested == nil {
		return DefaultDecrease, nil
	}
	if *requested < 1 {
		return 0, apperr.Invalid("quantity", "must be at least 1")
	}
	return *requested, nil
}

// Decrease applies a decrement in memory. Stock is unchanged on error.
func (p *Product) Decrease(quantity int) error {
	if p.StockCount < quantity {
		return ErrInsufficientStock
	}
	p.StockCount -= quantity
	return nil
}
