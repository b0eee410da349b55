package application

import (
	"context"
	"time"

	"github.com/dmehra2102/marketplace-orders/internal/payment/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/outbox"
)

// PaymentRepository writes payments together with their outbox events in one
// transaction.
type PaymentRepository interface {
	// CreateWithOutbox returns domain.ErrDuplicatePayment when the order
	// already has a payment.
	CreateWithOutbox(ctx context.Context, p domain.Payment, ev outbox.Record) error
	GetByOrderID(ctx context.Context, orderID string) (domain.Payment, error)
	List(ctx context.Context) ([]domain.Payment, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Payment, error)
	UpdateStatusWithOutbox(ctx context.Context, orderID string, status domain.Status, at time.Time, ev outbox.Record) (domain.Payment, error)
	Delete(ctx context.Context, id string) error
}

// SuccessHandler runs the side effects of a payment reaching SUCCEEDED. It
// must return without waiting for them.
type SuccessHandler interface {
	PaymentSucceeded(ctx context.Context, p domain.Payment, caller auth.Principal)
}
