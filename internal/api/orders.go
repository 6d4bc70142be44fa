package api

import (
	"context"
	"net/http"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/domain"
)

// OrderClient reads and creates orders. Scoping is server-enforced:
// ListAll requires the ADMIN role backend-side, CreateOrder the CLIENT
// role. The UI's own role checks are only there to avoid pointless calls.
type OrderClient struct {
	c *Client
}

func (c *Client) Orders() *OrderClient {
	return &OrderClient{c: c}
}

// ListAll returns every order (administrative scope).
func (o *OrderClient) ListAll(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	url := o.c.orderBase + "/orders"
	if err := o.c.doJSON(ctx, http.MethodGet, url, nil, &orders, "Failed to fetch orders"); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListMine returns the calling user's orders.
func (o *OrderClient) ListMine(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	url := o.c.orderBase + "/orders/me"
	if err := o.c.doJSON(ctx, http.MethodGet, url, nil, &orders, "Failed to fetch orders"); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder submits an order composition. The backend recomputes prices
// and stock; KindForbidden and KindInvalidPayload come back verbatim for
// user messaging.
func (o *OrderClient) CreateOrder(ctx context.Context, sub domain.OrderSubmission) (*domain.Order, error) {
	var order domain.Order
	url := o.c.orderBase + "/orders"
	if err := o.c.doJSON(ctx, http.MethodPost, url, sub, &order, "Failed to create order"); err != nil {
		return nil, err
	}
	return &order, nil
}
