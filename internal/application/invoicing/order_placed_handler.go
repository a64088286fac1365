package invoicing

import (
	"context"

	"go.uber.org/zap"

	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/notification"
	"github.com/warawul/backend/internal/domain/shared"
)

// orderPlacedTemplate is the notification template rendered for order
// confirmation mails.
const orderPlacedTemplate = "order-placed"

// OrderPlacedHandler generates the invoice for a placed order and hands the
// result to the customer notification. Invoice failures never block the
// confirmation mail, the mail then simply omits the invoice link.
type OrderPlacedHandler struct {
	generator *Generator
	catalog   catalog.Service
	sender    notification.Sender
	logger    *zap.Logger
}

var _ shared.EventHandler = (*OrderPlacedHandler)(nil)

// NewOrderPlacedHandler wires the invoice generator into the order event
// stream.
func NewOrderPlacedHandler(generator *Generator, catalogSvc catalog.Service, sender notification.Sender, logger *zap.Logger) *OrderPlacedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPlacedHandler{
		generator: generator,
		catalog:   catalogSvc,
		sender:    sender,
		logger:    logger,
	}
}

// EventTypes returns the order events this handler subscribes to.
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{catalog.EventOrderPlaced}
}

// Handle processes one order placement. Errors are logged and never
// re-raised so that order processing is not blocked by invoicing problems.
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	orderID := event.ResourceID()

	order, err := h.catalog.RetrieveOrder(ctx, orderID)
	if err != nil {
		h.logger.Error("could not load placed order", zap.String("order_id", orderID), zap.Error(err))
		return nil
	}

	data := map[string]any{
		"order_id":   order.ID,
		"display_id": order.DisplayID,
	}

	invoice, err := h.generator.GenerateInvoice(ctx, order)
	if err != nil {
		h.logger.Error("invoice generation failed, confirmation goes out without invoice",
			zap.String("order_id", orderID),
			zap.Error(err))
	} else {
		data["invoice_number"] = invoice.InvoiceNumber
		data["invoice_url"] = invoice.PDFURL
	}

	if h.sender == nil || order.Email == "" {
		return nil
	}

	if err := h.sender.Send(ctx, notification.Message{
		To:       order.Email,
		Channel:  notification.ChannelEmail,
		Template: orderPlacedTemplate,
		Data:     data,
	}); err != nil {
		h.logger.Error("order confirmation mail failed", zap.String("order_id", orderID), zap.Error(err))
	}
	return nil
}
