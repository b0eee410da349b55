package http

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmehra2102/marketplace-orders/internal/orchestrator/application"
	"github.com/dmehra2102/marketplace-orders/pkg/collab"
)

// OrderClient reads orders from the order service.
type OrderClient struct{ c *collab.Client }

func NewOrderClient(c *collab.Client) *OrderClient { return &OrderClient{c: c} }

type orderView struct {
	Products []struct {
		ProductID string `json:"productId"`
	} `json:"products"`
}

func (o *OrderClient) GetOrderProductIDs(ctx context.Context, orderID, authorization string) ([]string, error) {
	var view orderView
	if err := o.c.Do(ctx, http.MethodGet, "/orders/"+url.PathEscape(orderID), authorization, nil, &view); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(view.Products))
	for _, p := range view.Products {
		ids = append(ids, p.ProductID)
	}
	return ids, nil
}

// StockClient decrements stock in the inventory service.
type StockClient struct{ c *collab.Client }

func NewStockClient(c *collab.Client) *StockClient { return &StockClient{c: c} }

func (s *StockClient) DecreaseStock(ctx context.Context, productID string, quantity int, authorization string) error {
	path := "/products/" + url.PathEscape(productID) + "/decrease-stock"
	return s.c.Do(ctx, http.MethodPut, path, authorization, map[string]int{"quantity": quantity}, nil)
}

// NotificationClient asks the notification service to send an email.
type NotificationClient struct{ c *collab.Client }

func NewNotificationClient(c *collab.Client) *NotificationClient { return &NotificationClient{c: c} }

func (n *NotificationClient) SendEmail(ctx context.Context, email application.Email, authorization string) error {
	return n.c.Do(ctx, http.MethodPost, "/notify/email", authorization, email, nil)
}
