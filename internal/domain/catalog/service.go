package catalog

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
	ErrOrderNotFound   = errors.New("order not found")
)

// Service is the port to the host commerce platform's catalog and order data.
type Service interface {
	// RetrieveProduct loads a product with all of its variants.
	RetrieveProduct(ctx context.Context, productID string) (*Product, error)
	RetrieveVariant(ctx context.Context, variantID string) (*Variant, error)
	ListProducts(ctx context.Context) ([]Product, error)

	// RetrieveOrder loads an order with items, addresses and shipping methods.
	RetrieveOrder(ctx context.Context, orderID string) (*Order, error)

	// UpdateVariantMetadata merges the given keys into the variant's metadata.
	UpdateVariantMetadata(ctx context.Context, variantID string, metadata map[string]string) error
}
