package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/singleflight"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/domain"
)

// ProductFields is the mutation payload for create/update.
type ProductFields struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

// ProductClient reads and mutates the catalog. Mutations are rejected by
// the backend for callers without the ADMIN role regardless of what the UI
// showed; the client just relays that.
type ProductClient struct {
	c  *Client
	sf singleflight.Group
}

func (c *Client) Products() *ProductClient {
	return &ProductClient{c: c}
}

// List fetches the full catalog snapshot. Concurrent calls share a single
// in-flight request to avoid hammering the service when several views load
// at once.
func (p *ProductClient) List(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := p.sf.Do("list", func() (interface{}, error) {
		resp, err := p.c.do(ctx, http.MethodGet, p.c.productBase+"/products", nil)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, remoteErrorFromResponse(resp, "Failed to fetch products")
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read products response: %w", err)
		}
		return decodeProductList(body)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// decodeProductList tolerates the three shapes the product service is
// known to return: a plain array, a HAL envelope (_embedded.products), and
// a Spring page (content). Entries without an id are dropped.
func decodeProductList(body []byte) ([]domain.Product, error) {
	var products []domain.Product
	if err := json.Unmarshal(body, &products); err != nil {
		var envelope struct {
			Embedded struct {
				Products []domain.Product `json:"products"`
			} `json:"_embedded"`
			Content []domain.Product `json:"content"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("unrecognized products response shape: %w", err)
		}
		products = envelope.Embedded.Products
		if products == nil {
			products = envelope.Content
		}
	}

	valid := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID != 0 {
			valid = append(valid, p)
		}
	}
	return valid, nil
}

// Get fetches one product; KindNotFound when it does not exist.
func (p *ProductClient) Get(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	url := fmt.Sprintf("%s/products/%d", p.c.productBase, id)
	if err := p.c.doJSON(ctx, http.MethodGet, url, nil, &product, "Failed to fetch product"); err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *ProductClient) Create(ctx context.Context, fields ProductFields) (*domain.Product, error) {
	var product domain.Product
	url := p.c.productBase + "/products"
	if err := p.c.doJSON(ctx, http.MethodPost, url, fields, &product, "Failed to create product"); err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *ProductClient) Update(ctx context.Context, id int64, fields ProductFields) (*domain.Product, error) {
	var product domain.Product
	url := fmt.Sprintf("%s/products/%d", p.c.productBase, id)
	if err := p.c.doJSON(ctx, http.MethodPut, url, fields, &product, "Failed to update product"); err != nil {
		return nil, err
	}
	return &product, nil
}

// Delete removes a product. KindConflict means the product is referenced
// by existing orders and the backend refused.
func (p *ProductClient) Delete(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/products/%d", p.c.productBase, id)
	return p.c.doJSON(ctx, http.MethodDelete, url, nil, nil, "Failed to delete product")
}
