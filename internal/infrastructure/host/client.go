package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/catalog"
)

// maxResponseSize is the maximum allowed response size from the host API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Client is the HTTP adapter for the host platform's admin API
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

var _ catalog.Service = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger for the client
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new host API client with the given configuration
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// doRequest performs one admin API call. A nil body sends no payload.
// notFound is returned verbatim on HTTP 404 so callers can surface their
// domain sentinel.
func (c *Client) doRequest(ctx context.Context, method, path string, body any, notFound error) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("host: failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("host: failed to create request: %w", err)
	}
	if c.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIToken)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("host: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("host: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return nil, notFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("host: %s %s returned status %d: %s", method, path, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// RetrieveProduct loads a product with all of its variants
func (c *Client) RetrieveProduct(ctx context.Context, productID string) (*catalog.Product, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/admin/products/"+productID, nil, catalog.ErrProductNotFound)
	if err != nil {
		return nil, err
	}

	var envelope productEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("host: failed to decode product: %w", err)
	}
	return productFromBody(&envelope.Product), nil
}

// RetrieveVariant loads a single product variant
func (c *Client) RetrieveVariant(ctx context.Context, variantID string) (*catalog.Variant, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/admin/variants/"+variantID, nil, catalog.ErrVariantNotFound)
	if err != nil {
		return nil, err
	}

	var envelope variantEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("host: failed to decode variant: %w", err)
	}
	return variantFromBody(&envelope.Variant), nil
}

// ListProducts loads the whole catalog
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/admin/products", nil, nil)
	if err != nil {
		return nil, err
	}

	var envelope productListEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("host: failed to decode product list: %w", err)
	}

	products := make([]catalog.Product, 0, len(envelope.Products))
	for i := range envelope.Products {
		products = append(products, *productFromBody(&envelope.Products[i]))
	}
	return products, nil
}

// RetrieveOrder loads an order with items, addresses and shipping methods
func (c *Client) RetrieveOrder(ctx context.Context, orderID string) (*catalog.Order, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/admin/orders/"+orderID, nil, catalog.ErrOrderNotFound)
	if err != nil {
		return nil, err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("host: failed to decode order: %w", err)
	}
	return orderFromBody(&envelope.Order), nil
}

// UpdateVariantMetadata merges the given keys into the variant's metadata
func (c *Client) UpdateVariantMetadata(ctx context.Context, variantID string, metadata map[string]string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/admin/variants/"+variantID+"/metadata",
		metadataUpdateBody{Metadata: metadata}, catalog.ErrVariantNotFound)
	return err
}
