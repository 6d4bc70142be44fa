package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the product and order services on behalf of one session.
// It is a thin wrapper: no caching of results, no local retries beyond the
// transport's single 401-refresh, no interpretation of business rules.
type Client struct {
	http        *http.Client
	productBase string
	orderBase   string
}

// NewClient builds a per-session client. productBase and orderBase point at
// the service roots, e.g. http://gateway:8888/product-service.
func NewClient(productBase, orderBase string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Transport: newAuthTransport(tokens),
			Timeout:   timeout,
		},
		productBase: productBase,
		orderBase:   orderBase,
	}
}

func (c *Client) do(ctx context.Context, method, url string, payload any) (*http.Response, error) {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unreachable(err)
	}
	return resp, nil
}

// doJSON performs the request and decodes a 2xx response body into out
// (when out is non-nil). Failure responses become RemoteErrors carrying
// the backend message.
func (c *Client) doJSON(ctx context.Context, method, url string, payload, out any, fallback string) error {
	resp, err := c.do(ctx, method, url, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return remoteErrorFromResponse(resp, fallback)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
