// Package handler exposes the admin API for the accounting integration.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/warawul/backend/internal/application/sync"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/domain/syncmap"
	"github.com/warawul/backend/internal/interfaces/http/dto"
)

// SyncHandler handles the accounting synchronization admin endpoints
type SyncHandler struct {
	engine  *sync.Engine
	catalog catalog.Service
	bucket  string
}

// NewSyncHandler creates a new SyncHandler. bucket names the blob store
// bucket invoices are archived to and is reported by the status endpoint.
func NewSyncHandler(engine *sync.Engine, catalogSvc catalog.Service, bucket string) *SyncHandler {
	return &SyncHandler{
		engine:  engine,
		catalog: catalogSvc,
		bucket:  bucket,
	}
}

// RegisterRoutes registers the synchronization routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/lexoffice")
	group.POST("/sync", h.SyncAll)
	group.POST("/products/:id/sync", h.SyncProduct)
	group.GET("/mappings", h.ListMappings)
	group.GET("/mappings/:variant_id", h.GetMapping)
	group.POST("/mappings/rebuild", h.RebuildMappings)
	group.GET("/status", h.Status)
}

// SyncReportResponse represents the outcome of a catalog sync run
type SyncReportResponse struct {
	Products   int                   `json:"products"`
	Variants   int                   `json:"variants"`
	Synced     int                   `json:"synced"`
	Failed     int                   `json:"failed"`
	DurationMS int64                 `json:"duration_ms"`
	Failures   []SyncFailureResponse `json:"failures,omitempty"`
}

// SyncFailureResponse represents one variant that failed to sync
type SyncFailureResponse struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Reason    string `json:"reason"`
}

// SyncAll triggers a synchronization of the whole catalog
func (h *SyncHandler) SyncAll(c *gin.Context) {
	report, err := h.engine.SyncAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(toSyncReportResponse(report)))
}

// SyncProduct triggers a synchronization of a single product
func (h *SyncHandler) SyncProduct(c *gin.Context) {
	productID := c.Param("id")

	product, err := h.catalog.RetrieveProduct(c.Request.Context(), productID)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.engine.SyncProduct(c.Request.Context(), product); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"product_id": productID,
		"variants":   len(product.Variants),
	}))
}

// MappingResponse represents one variant to article mapping
type MappingResponse struct {
	ProductID        string     `json:"product_id"`
	VariantID        string     `json:"variant_id"`
	ArticleID        string     `json:"article_id"`
	VariantArticleID string     `json:"variant_article_id"`
	SKU              string     `json:"sku,omitempty"`
	LastSyncedAt     *time.Time `json:"last_synced_at,omitempty"`
	LastSyncedNet    *string    `json:"last_synced_net_price,omitempty"`
}

// ListMappings returns the current variant to article mappings
func (h *SyncHandler) ListMappings(c *gin.Context) {
	mappings := h.engine.Mappings()
	out := make([]MappingResponse, 0, len(mappings))
	for i := range mappings {
		out = append(out, toMappingResponse(&mappings[i]))
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(out))
}

// GetMapping resolves the remote article id for a single variant
func (h *SyncHandler) GetMapping(c *gin.Context) {
	variantID := c.Param("variant_id")
	articleID, ok := h.engine.ArticleID(variantID)
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound,
			"no mapping for variant "+variantID))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"variant_id": variantID,
		"article_id": articleID,
	}))
}

// RebuildMappings repopulates the mapping registry from the remote articles
func (h *SyncHandler) RebuildMappings(c *gin.Context) {
	restored, err := h.engine.RebuildMappings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"restored": restored}))
}

// Status reports the registry state of the integration
func (h *SyncHandler) Status(c *gin.Context) {
	mappings := h.engine.Mappings()

	var lastSynced *time.Time
	for i := range mappings {
		at := mappings[i].LastSyncedAt
		if at.IsZero() {
			continue
		}
		if lastSynced == nil || at.After(*lastSynced) {
			t := at
			lastSynced = &t
		}
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"mappings":       len(mappings),
		"last_synced_at": lastSynced,
		"invoice_bucket": h.bucket,
	}))
}

func toSyncReportResponse(report *sync.SyncReport) SyncReportResponse {
	out := SyncReportResponse{
		Products:   report.Products,
		Variants:   report.Variants,
		Synced:     report.Synced,
		Failed:     report.Failed,
		DurationMS: report.CompletedAt.Sub(report.StartedAt).Milliseconds(),
	}
	for _, failure := range report.Failures {
		out.Failures = append(out.Failures, SyncFailureResponse{
			ProductID: failure.ProductID,
			VariantID: failure.VariantID,
			Reason:    failure.Reason,
		})
	}
	return out
}

func toMappingResponse(mapping *syncmap.VariantMapping) MappingResponse {
	out := MappingResponse{
		ProductID:        mapping.LocalProductID,
		VariantID:        mapping.LocalVariantID,
		ArticleID:        mapping.RemoteArticleID,
		VariantArticleID: mapping.RemoteVariantArticleID,
		SKU:              mapping.SKU,
	}
	if !mapping.LastSyncedAt.IsZero() {
		at := mapping.LastSyncedAt
		out.LastSyncedAt = &at
	}
	if mapping.LastSyncedNetPrice != nil {
		out.LastSyncedNet = decimalString(*mapping.LastSyncedNetPrice)
	}
	return out
}

func decimalString(d decimal.Decimal) *string {
	s := d.String()
	return &s
}
