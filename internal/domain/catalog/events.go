package catalog

import "github.com/warawul/backend/internal/domain/shared"

// Event types emitted by the host commerce platform. Payloads carry only the
// entity id; subscribers fetch the current state themselves.
const (
	EventProductCreated = "product.created"
	EventProductDeleted = "product.deleted"
	EventVariantUpdated = "product-variant.updated"
	EventVariantDeleted = "product-variant.deleted"
	EventOrderPlaced    = "order.placed"
)

// ProductEvent signals a lifecycle change of a product.
type ProductEvent struct {
	shared.BaseDomainEvent
}

// NewProductCreatedEvent creates an event for a newly created product.
func NewProductCreatedEvent(productID string) *ProductEvent {
	return &ProductEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductCreated, "product", productID),
	}
}

// NewProductDeletedEvent creates an event for a deleted product.
func NewProductDeletedEvent(productID string) *ProductEvent {
	return &ProductEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventProductDeleted, "product", productID),
	}
}

// VariantEvent signals a lifecycle change of a product variant.
type VariantEvent struct {
	shared.BaseDomainEvent
}

// NewVariantUpdatedEvent creates an event for an updated variant.
func NewVariantUpdatedEvent(variantID string) *VariantEvent {
	return &VariantEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVariantUpdated, "product-variant", variantID),
	}
}

// NewVariantDeletedEvent creates an event for a deleted variant.
func NewVariantDeletedEvent(variantID string) *VariantEvent {
	return &VariantEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVariantDeleted, "product-variant", variantID),
	}
}

// OrderPlacedEvent signals that an order was placed and paid for.
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
}

// NewOrderPlacedEvent creates an event for a placed order.
func NewOrderPlacedEvent(orderID string) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOrderPlaced, "order", orderID),
	}
}
