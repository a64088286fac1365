package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/shared"
)

// CatalogEventHandler reacts to product lifecycle events from the host
// platform by reconciling the affected entities.
type CatalogEventHandler struct {
	engine  *Engine
	catalog catalog.Service
	logger  *zap.Logger
}

var _ shared.EventHandler = (*CatalogEventHandler)(nil)

// NewCatalogEventHandler creates a handler wired to the sync engine.
func NewCatalogEventHandler(engine *Engine, catalogSvc catalog.Service, logger *zap.Logger) *CatalogEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogEventHandler{
		engine:  engine,
		catalog: catalogSvc,
		logger:  logger,
	}
}

// EventTypes returns the catalog events this handler subscribes to.
func (h *CatalogEventHandler) EventTypes() []string {
	return []string{
		catalog.EventProductCreated,
		catalog.EventProductDeleted,
		catalog.EventVariantUpdated,
		catalog.EventVariantDeleted,
	}
}

// Handle dispatches a catalog event to the matching sync operation.
func (h *CatalogEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch event.EventType() {
	case catalog.EventProductCreated:
		return h.syncProduct(ctx, event.ResourceID())
	case catalog.EventProductDeleted:
		return h.engine.DeleteProduct(ctx, event.ResourceID())
	case catalog.EventVariantUpdated:
		return h.syncVariant(ctx, event.ResourceID())
	case catalog.EventVariantDeleted:
		return h.engine.DeleteVariant(ctx, event.ResourceID())
	default:
		h.logger.Warn("unexpected event type", zap.String("event_type", event.EventType()))
		return nil
	}
}

func (h *CatalogEventHandler) syncProduct(ctx context.Context, productID string) error {
	product, err := h.catalog.RetrieveProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			h.logger.Warn("product vanished before sync", zap.String("product_id", productID))
			return nil
		}
		return fmt.Errorf("retrieve product %s: %w", productID, err)
	}
	return h.engine.SyncProduct(ctx, product)
}

func (h *CatalogEventHandler) syncVariant(ctx context.Context, variantID string) error {
	variant, err := h.catalog.RetrieveVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			h.logger.Warn("variant vanished before sync", zap.String("variant_id", variantID))
			return nil
		}
		return fmt.Errorf("retrieve variant %s: %w", variantID, err)
	}

	product, err := h.catalog.RetrieveProduct(ctx, variant.ProductID)
	if err != nil {
		return fmt.Errorf("retrieve product %s: %w", variant.ProductID, err)
	}

	if err := h.engine.pacer.Wait(ctx); err != nil {
		return err
	}
	return h.engine.SyncVariant(ctx, product, variant)
}
