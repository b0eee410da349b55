package domain

import "time"

// Product is the catalog view the inquiry flow needs from the product owner's service.
type Product struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// NewInquiry opens a conversation between buyerID and the product's owner.
// The line snapshots the product as it is now.
func NewInquiry(p Product, buyerID string, quantity int, now time.Time) Order {
	return Order{
		BuyerID:  buyerID,
		SellerID: p.OwnerID,
		Products: []OrderProduct{{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    quantity,
		}},
		TotalPrice:  p.Price,
		Status:      StatusInquiry,
		ChatHistory: []ChatMessage{},
		CreatedAt:   now,
	}
}
