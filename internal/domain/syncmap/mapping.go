// Package syncmap holds the mapping between host catalog variants and the
// articles that represent them on the remote accounting system.
package syncmap

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrLocalProductIDRequired  = errors.New("local product id is required")
	ErrLocalVariantIDRequired  = errors.New("local variant id is required")
	ErrRemoteArticleIDRequired = errors.New("remote article id is required")
)

// VariantMapping links one host variant to its remote accounting article.
// RemoteVariantArticleID equals RemoteArticleID unless the variant has a
// dedicated remote article of its own.
type VariantMapping struct {
	LocalProductID         string
	LocalVariantID         string
	RemoteArticleID        string
	RemoteVariantArticleID string
	SKU                    string
	LastSyncedAt           time.Time
	LastSyncedNetPrice     *decimal.Decimal
}

// NewVariantMapping creates a validated mapping. The remote variant article
// id defaults to the remote article id.
func NewVariantMapping(localProductID, localVariantID, remoteArticleID, sku string) (*VariantMapping, error) {
	if localProductID == "" {
		return nil, ErrLocalProductIDRequired
	}
	if localVariantID == "" {
		return nil, ErrLocalVariantIDRequired
	}
	if remoteArticleID == "" {
		return nil, ErrRemoteArticleIDRequired
	}
	return &VariantMapping{
		LocalProductID:         localProductID,
		LocalVariantID:         localVariantID,
		RemoteArticleID:        remoteArticleID,
		RemoteVariantArticleID: remoteArticleID,
		SKU:                    sku,
	}, nil
}

// RecordSynced marks the mapping as freshly reconciled with the given net
// price on the remote side.
func (m *VariantMapping) RecordSynced(netPrice decimal.Decimal) {
	now := time.Now()
	m.LastSyncedAt = now
	price := netPrice
	m.LastSyncedNetPrice = &price
}

// Store is the port for mapping persistence, keyed by local variant id.
type Store interface {
	// Get returns the mapping for a variant, if one exists.
	Get(variantID string) (*VariantMapping, bool)
	// Put inserts or replaces the mapping for its variant.
	Put(mapping *VariantMapping) error
	// Delete removes the mapping for a variant. Unknown ids are ignored.
	Delete(variantID string)
	// FindByProduct returns all mappings belonging to a product.
	FindByProduct(productID string) []VariantMapping
	// All returns a snapshot of every mapping.
	All() []VariantMapping
	// Len returns the number of stored mappings.
	Len() int
	// Clear removes all mappings.
	Clear()
}
