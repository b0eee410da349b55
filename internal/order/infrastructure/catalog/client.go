package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"github.com/dmehra2102/marketplace-orders/pkg/collab"
)

// ProductClient reads products from the inventory service.
type ProductClient struct {
	log *slog.Logger
	c   *collab.Client
}

func NewProductClient(log *slog.Logger, c *collab.Client) *ProductClient {
	return &ProductClient{log: log, c: c}
}

func (p *ProductClient) GetProduct(ctx context.Context, productID, authorization string) (domain.Product, error) {
	var product domain.Product
	if err := p.c.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(productID), authorization, nil, &product); err != nil {
		p.log.Warn("product lookup failed", "product_id", productID, "err", err)
		return domain.Product{}, err
	}
	return product, nil
}
