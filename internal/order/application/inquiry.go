package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/apperr"
	"github.com/dmehra2102/marketplace-orders/pkg/auth"
)

var ErrProductNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)

// InitiateInquiry looks the product up with the buyer's credential and opens
// (or reopens) the inquiry conversation for it.
func (s *Service) InitiateInquiry(ctx context.Context, productID string, buyer auth.Principal) (domain.Order, error) {
	if buyer.UserID == "" {
		return domain.Order{}, fmt.Errorf("initiate inquiry: %w", apperr.ErrUnauthorized)
	}

	product, err := s.catalog.GetProduct(ctx, productID, buyer.Token)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return domain.Order{}, ErrProductNotFound
	case err != nil && !errors.Is(err, apperr.ErrUpstream):
		return domain.Order{}, fmt.Errorf("%w: product lookup: %v", apperr.ErrUpstream, err)
	case err != nil:
		return domain.Order{}, err
	}

	return s.GetOrCreateInquiry(ctx, product, buyer.UserID, 1)
}

// GetOrCreateInquiry returns the product owner's open inquiry about this
// product, creating one for buyerID when none exists. The lookup does not
// consider the buyer, so a second buyer joins the existing conversation.
//
// The lookup and the insert are separate operations. Calls racing inside this
// process share one lookup/insert; racing processes can still each insert, and
// both documents are valid inquiries.
func (s *Service) GetOrCreateInquiry(ctx context.Context, product domain.Product, buyerID string, quantity int) (domain.Order, error) {
	if product.ID == "" {
		return domain.Order{}, ErrProductNotFound
	}
	v := &apperr.ValidationError{}
	if buyerID == "" {
		v.Add("buyerId", "must not be empty")
	}
	if quantity < 1 {
		v.Add("quantity", "must be at least 1")
	}
	if product.OwnerID == "" {
		v.Add("product.ownerId", "must not be empty")
	}
	if err := v.Err(); err != nil {
		return domain.Order{}, err
	}

	// The shared call must not fail for every waiter when its leader's
	// request is cancelled.
	detached := context.WithoutCancel(ctx)
	key := product.OwnerID + "|" + product.ID
	res, err, shared := s.inquiries.Do(key, func() (any, error) {
		return s.resolveInquiry(detached, product, buyerID, quantity)
	})
	if err != nil {
		return domain.Order{}, err
	}
	if shared {
		s.log.Debug("inquiry lookup shared", "product_id", product.ID, "buyer_id", buyerID)
	}
	return res.(domain.Order), nil
}

func (s *Service) resolveInquiry(ctx context.Context, product domain.Product, buyerID string, quantity int) (domain.Order, error) {
	existing, err := s.repo.FindInquiry(ctx, product.OwnerID, product.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("find inquiry: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	inquiry := domain.NewInquiry(product, buyerID, quantity, s.clock.Now())
	if err := inquiry.Validate(); err != nil {
		return domain.Order{}, err
	}
	created, err := s.repo.Insert(ctx, inquiry)
	if err != nil {
		return domain.Order{}, fmt.Errorf("create inquiry: %w", err)
	}
	s.log.Info("inquiry opened", "order_id", created.ID, "product_id", product.ID, "buyer_id", buyerID, "seller_id", product.OwnerID)
	return created, nil
}
