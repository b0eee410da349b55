package application

import (
	"context"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
)

type OrderRepository interface {
	// Insert stores a new order and returns it with its assigned id.
	Insert(ctx context.Context, o domain.Order) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	// FindInquiry returns nil when no open inquiry matches.
	FindInquiry(ctx context.Context, sellerID, productID string) (*domain.Order, error)
	Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error)
	Delete(ctx context.Context, id string) error
	// AppendMessage adds msg to the order's chat history in one atomic write.
	AppendMessage(ctx context.Context, id string, msg domain.ChatMessage) error
}

// ProductCatalog reads products from the service that owns them. authorization
// is forwarded as-is.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID, authorization string) (domain.Product, error)
}
