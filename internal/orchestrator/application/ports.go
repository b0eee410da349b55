package application

import "context"

// OrderReader returns the product ids of an order's lines, in order.
type OrderReader interface {
	GetOrderProductIDs(ctx context.Context, orderID, authorization string) ([]string, error)
}

type StockAdjuster interface {
	DecreaseStock(ctx context.Context, productID string, quantity int, authorization string) error
}

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
}

type Notifier interface {
	SendEmail(ctx context.Context, email Email, authorization string) error
}

// Guard claims a key once; later claims of the same key return false.
type Guard interface {
	Claim(ctx context.Context, key string) (bool, error)
}
