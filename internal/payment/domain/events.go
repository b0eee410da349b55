package domain

import "time"

const (
	AggregateType             = "payment"
	EventPaymentCreated       = "PaymentCreated"
	EventPaymentStatusChanged = "PaymentStatusChanged"
)

type PaymentCreated struct {
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type PaymentStatusChanged struct {
	OrderID   string    `json:"orderId"`
	Status    Status    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
}
