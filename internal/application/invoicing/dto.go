// Package invoicing turns placed orders into finalized invoices on the
// remote accounting system and archives the resulting PDFs.
package invoicing

import (
	"context"

	"github.com/warawul/backend/internal/infrastructure/storage"
)

// GeneratedInvoice is the outcome of a successful invoice generation.
type GeneratedInvoice struct {
	InvoiceID     string
	InvoiceNumber string
	PDFURL        string
	BlobKey       string
}

// ObjectStorage is the slice of the blob store the generator needs.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (*storage.UploadResult, error)
	Download(ctx context.Context, key string) ([]byte, error)
}
