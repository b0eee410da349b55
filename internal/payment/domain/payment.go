package domain

import (
	"fmt"
	"time"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSucceeded, StatusFailed:
		return true
	}
	return false
}

const DefaultCurrency = "CZK"

var (
	ErrPaymentNotFound  = fmt.Errorf("payment %w", apperr.ErrNotFound)
	ErrDuplicatePayment = fmt.Errorf("payment for this order already exists: %w", apperr.ErrConflict)
)

type Payment struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"orderId"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Status          Status    `json:"status"`
	ProductID       string    `json:"productId"`
	ProductQuantity int       `json:"productQuantity"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewPayment validates the input and returns a PENDING payment.
func NewPayment(id, orderID string, amount float64, currency, productID string, quantity int, now time.Time) (Payment, error) {
	v := &apperr.ValidationError{}
	if orderID == "" {
		v.Add("orderId", "must not be empty")
	}
	d := decimal.NewFromFloat(amount)
	if !d.IsPositive() || !d.Equal(d.Round(2)) {
		v.Add("amount", "must be a positive amount with at most 2 decimal places")
	}
	if productID == "" {
		v.Add("productId", "must not be empty")
	}
	if quantity <= 0 {
		v.Add("productQuantity", "must be greater than 0")
	}
	if err := v.Err(); err != nil {
		return Payment{}, err
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Payment{
		ID:              id,
		OrderID:         orderID,
		Amount:          amount,
		Currency:        currency,
		Status:          StatusPending,
		ProductID:       productID,
		ProductQuantity: quantity,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// FormatAmount renders the amount with exactly two decimals.
func (p Payment) FormatAmount() string {
	return decimal.NewFromFloat(p.Amount).StringFixed(2)
}
