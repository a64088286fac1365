package invoicing

import "errors"

var (
	// ErrArticleCreation marks a failed on-the-fly remote article creation.
	// It aborts the invoice for the affected order.
	ErrArticleCreation = errors.New("remote article creation failed")

	// ErrInvoiceNotFinalized marks an invoice that stayed in draft even
	// after an explicit finalize attempt. A draft invoice is never success.
	ErrInvoiceNotFinalized = errors.New("invoice was not finalized")
)
