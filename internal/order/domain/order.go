package domain

import (
	"fmt"
	"time"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusCreated   OrderStatus = "CREATED"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusInquiry   OrderStatus = "INQUIRY"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusConfirmed, StatusCancelled, StatusInquiry:
		return true
	}
	return false
}

var ErrOrderNotFound = fmt.Errorf("order %w", apperr.ErrNotFound)

// OrderProduct is a snapshot of a product line taken when the order was made.
type OrderProduct struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type Order struct {
	ID          string         `json:"id"`
	BuyerID     string         `json:"buyerId"`
	SellerID    string         `json:"sellerId"`
	Products    []OrderProduct `json:"products"`
	TotalPrice  float64        `json:"totalPrice"`
	Status      OrderStatus    `json:"status"`
	ChatHistory []ChatMessage  `json:"chatHistory"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// OrderFilter narrows a listing; empty fields match everything.
type OrderFilter struct {
	BuyerID  string
	SellerID string
}

// Validate checks an order before it is stored.
func (o Order) Validate() error {
	v := &apperr.ValidationError{}
	if o.BuyerID == "" {
		v.Add("buyerId", "must not be empty")
	}
	if o.SellerID == "" {
		v.Add("sellerId", "must not be empty")
	}
	validateProducts(v, o.Products)
	if !ValidPrice(o.TotalPrice) {
		v.Add("totalPrice", "must be a non-negative amount with at most 2 decimal places")
	}
	if !o.Status.Valid() {
		v.Add("status", fmt.Sprintf("unknown status %q", o.Status))
	}
	if o.Status == StatusInquiry && len(o.Products) != 1 {
		v.Add("products", "an inquiry carries exactly one product line")
	}
	return v.Err()
}

func validateProducts(v *apperr.ValidationError, products []OrderProduct) {
	if len(products) == 0 {
		v.Add("products", "at least one product is required")
		return
	}
	for i, p := range products {
		field := fmt.Sprintf("products[%d]", i)
		if p.ProductID == "" {
			v.Add(field+".productId", "must not be empty")
		}
		if p.Quantity <= 0 {
			v.Add(field+".quantity", "must be greater than 0")
		}
		if !ValidPrice(p.Price) {
			v.Add(field+".price", "must be a non-negative amount with at most 2 decimal places")
		}
	}
}

// ValidPrice accepts non-negative amounts with at most two decimal places.
func ValidPrice(p float64) bool {
	d := decimal.NewFromFloat(p)
	return !d.IsNegative() && d.Equal(d.Round(2))
}
