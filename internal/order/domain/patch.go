package domain

import (
	"fmt"

	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
)

// OrderPatch is a partial update. Nil fields are left untouched.
type OrderPatch struct {
	BuyerID    *string         `json:"buyerId,omitempty"`
	SellerID   *string         `json:"sellerId,omitempty"`
	Products   *[]OrderProduct `json:"products,omitempty"`
	TotalPrice *float64        `json:"totalPrice,omitempty"`
	Status     *OrderStatus    `json:"status,omitempty"`
}

func (p OrderPatch) Empty() bool {
	return p.BuyerID == nil && p.SellerID == nil && p.Products == nil && p.TotalPrice == nil && p.Status == nil
}

// Validate checks the provided fields only.
func (p OrderPatch) Validate() error {
	v := &apperr.ValidationError{}
	if p.BuyerID != nil && *p.BuyerID == "" {
		v.Add("buyerId", "must not be empty")
	}
	if p.SellerID != nil && *p.SellerID == "" {
		v.Add("sellerId", "must not be empty")
	}
	if p.Products != nil {
		validateProducts(v, *p.Products)
	}
	if p.TotalPrice != nil && !ValidPrice(*p.TotalPrice) {
		v.Add("totalPrice", "must be a non-negative amount with at most 2 decimal places")
	}
	if p.Status != nil && !p.Status.Valid() {
		v.Add("status", fmt.Sprintf("unknown status %q", *p.Status))
	}
	return v.Err()
}

// Apply returns o with the provided fields overwritten.
func (p OrderPatch) Apply(o Order) Order {
	if p.BuyerID != nil {
		o.BuyerID = *p.BuyerID
	}
	if p.SellerID != nil {
		o.SellerID = *p.SellerID
	}
	if p.Products != nil {
		o.Products = append([]OrderProduct(nil), (*p.Products)...)
	}
	if p.TotalPrice != nil {
		o.TotalPrice = *p.TotalPrice
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	return o
}
