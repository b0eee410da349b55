package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	catalog   ProductCatalog
	clock     clock.Clock
	inquiries singleflight.Group
}

func NewService(log *slog.Logger, repo OrderRepository, catalog ProductCatalog, clk clock.Clock) *Service {
	return &Service{log: log, repo: repo, catalog: catalog, clock: clk}
}

func (s *Service) CreateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	o.ID = ""
	if o.Status == "" {
		o.Status = domain.StatusCreated
	}
	if err := o.Validate(); err != nil {
		return domain.Order{}, err
	}
	if o.ChatHistory == nil {
		o.ChatHistory = []domain.ChatMessage{}
	}
	o.CreatedAt = s.clock.Now()

	created, err := s.repo.Insert(ctx, o)
	if err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order created", "order_id", created.ID, "buyer_id", created.BuyerID, "status", created.Status)
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, filter)
}

// UpdateOrder writes only the fields present in patch. The merged order must
// still be valid, e.g. a patch cannot turn a multi-line order into an inquiry.
func (s *Service) UpdateOrder(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	if err := patch.Validate(); err != nil {
		return domain.Order{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if patch.Empty() {
		return current, nil
	}
	if err := patch.Apply(current).Validate(); err != nil {
		return domain.Order{}, err
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order updated", "order_id", id, "status", updated.Status)
	return updated, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("order deleted", "order_id", id)
	return nil
}

// AppendMessage persists one chat message. A zero timestamp is set to now.
func (s *Service) AppendMessage(ctx context.Context, orderID string, msg domain.ChatMessage) (domain.ChatMessage, error) {
	if err := msg.Validate(); err != nil {
		return domain.ChatMessage{}, err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.clock.Now()
	}
	if err := s.repo.AppendMessage(ctx, orderID, msg); err != nil {
		return domain.ChatMessage{}, err
	}
	return msg, nil
}
