package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warawul/backend/internal/application/invoicing"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/interfaces/http/dto"
)

// presignedURLExpiry bounds how long a shared invoice link stays valid.
const presignedURLExpiry = 15 * time.Minute

// DownloadURLSigner issues time-limited download links for archived blobs.
type DownloadURLSigner interface {
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// InvoiceHandler handles the invoice admin endpoints
type InvoiceHandler struct {
	generator *invoicing.Generator
	catalog   catalog.Service
	signer    DownloadURLSigner
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(generator *invoicing.Generator, catalogSvc catalog.Service, signer DownloadURLSigner) *InvoiceHandler {
	return &InvoiceHandler{
		generator: generator,
		catalog:   catalogSvc,
		signer:    signer,
	}
}

// RegisterRoutes registers the invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/:id/invoice", h.GenerateInvoice)
	rg.GET("/invoices/pdf", h.InvoicePDF)
}

// InvoiceResponse represents a generated invoice
type InvoiceResponse struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	PDFURL        string `json:"pdf_url"`
	BlobKey       string `json:"blob_key"`
}

// GenerateInvoice creates and archives the invoice for an order
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	orderID := c.Param("id")

	order, err := h.catalog.RetrieveOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.generator.GenerateInvoice(c.Request.Context(), order)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(InvoiceResponse{
		InvoiceID:     result.InvoiceID,
		InvoiceNumber: result.InvoiceNumber,
		PDFURL:        result.PDFURL,
		BlobKey:       result.BlobKey,
	}))
}

// InvoicePDF streams an archived invoice PDF by its blob key. With
// mode=url it returns a time-limited download link instead of the bytes.
func (h *InvoiceHandler) InvoicePDF(c *gin.Context) {
	blobKey := c.Query("key")
	if blobKey == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeValidation, "query parameter 'key' is required"))
		return
	}

	if c.Query("mode") == "url" {
		url, expiresAt, err := h.signer.GenerateDownloadURL(c.Request.Context(), blobKey, presignedURLExpiry)
		if err != nil {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, err.Error()))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
			"url":        url,
			"expires_at": expiresAt,
		}))
		return
	}

	pdf, err := h.generator.InvoicePDF(c.Request.Context(), blobKey)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, err.Error()))
		return
	}

	c.Data(http.StatusOK, "application/pdf", pdf)
}
