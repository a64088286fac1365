package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/warawul/backend/internal/application/invoicing"
	"github.com/warawul/backend/internal/domain/accounting"
	"github.com/warawul/backend/internal/domain/catalog"
	"github.com/warawul/backend/internal/interfaces/http/dto"
)

// writeError maps a domain error to an HTTP status and error code.
func writeError(c *gin.Context, err error) {
	var remoteErr *accounting.RemoteAPIError

	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrVariantNotFound),
		errors.Is(err, catalog.ErrOrderNotFound),
		errors.Is(err, accounting.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, err.Error()))
	case errors.Is(err, accounting.ErrRateLimitExceeded):
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse(dto.ErrCodeRateLimited, err.Error()))
	case errors.Is(err, invoicing.ErrInvoiceNotFinalized):
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(dto.ErrCodeInvoiceNotFinalized, err.Error()))
	case errors.Is(err, invoicing.ErrArticleCreation):
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(dto.ErrCodeArticleCreation, err.Error()))
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, dto.NewErrorResponse(dto.ErrCodeRemoteAPI, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, err.Error()))
	}
}
