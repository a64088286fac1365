package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/shared"
	"github.com/warawul/backend/internal/interfaces/http/dto"
)

// WebhookHandler translates host platform webhooks into domain events
type WebhookHandler struct {
	publisher shared.EventPublisher
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(publisher shared.EventPublisher) *WebhookHandler {
	return &WebhookHandler{publisher: publisher}
}

// RegisterRoutes registers the webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/catalog", h.Receive)
}

// WebhookRequest is one host platform event notification
type WebhookRequest struct {
	Event      string `json:"event" binding:"required"`
	ResourceID string `json:"resource_id" binding:"required"`
}

// Receive accepts a host platform event and dispatches it onto the bus
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeValidation, err.Error()))
		return
	}

	var event shared.DomainEvent
	switch req.Event {
	case catalog.EventProductCreated:
		event = catalog.NewProductCreatedEvent(req.ResourceID)
	case catalog.EventProductDeleted:
		event = catalog.NewProductDeletedEvent(req.ResourceID)
	case catalog.EventVariantUpdated:
		event = catalog.NewVariantUpdatedEvent(req.ResourceID)
	case catalog.EventVariantDeleted:
		event = catalog.NewVariantDeletedEvent(req.ResourceID)
	case catalog.EventOrderPlaced:
		event = catalog.NewOrderPlacedEvent(req.ResourceID)
	default:
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeValidation, "unknown event: "+req.Event))
		return
	}

	if err := h.publisher.Publish(c.Request.Context(), event); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(gin.H{
		"event":       req.Event,
		"resource_id": req.ResourceID,
	}))
}
