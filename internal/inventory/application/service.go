package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/marketplace-orders/internal/inventory/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
	"github.com/dmehra2102/marketplace-orders/pkg/clock"
	"github.com/google/uuid"
)

type Service struct {
	log   *slog.Logger
	repo  ProductRepository
	clock clock.Clock
}

func NewService(log *slog.Logger, repo ProductRepository, clk clock.Clock) *Service {
	return &Service{log: log, repo: repo, clock: clk}
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       float64
	StockCount  int
}

// CreateProduct stores a product owned by the caller.
func (s *Service) CreateProduct(ctx context.Context, owner auth.Principal, in CreateProductInput) (domain.Product, error) {
	if owner.UserID == "" {
		return domain.Product{}, apperr.ErrUnauthorized
	}
	p := domain.Product{
		ID:          uuid.NewString(),
		OwnerID:     owner.UserID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		StockCount:  in.StockCount,
		CreatedAt:   s.clock.Now(),
	}
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product created", "product_id", p.ID, "owner_id", p.OwnerID, "stock", p.StockCount)
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// DecreaseStock removes quantity units, defaulting to one.
func (s *Service) DecreaseStock(ctx context.Context, id string, quantity *int) (domain.Product, error) {
	q, err := domain.DecreaseQuantity(quantity)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := s.repo.DecreaseStock(ctx, id, q)
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("stock decreased", "product_id", id, "quantity", q, "remaining", p.StockCount)
	return p, nil
}
