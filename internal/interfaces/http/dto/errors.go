package dto

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used when a request fails validation
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeRateLimited is used when the remote accounting API refuses
	// further calls
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeRemoteAPI is used when the remote accounting API rejects a call
	ErrCodeRemoteAPI = "ERR_REMOTE_API"
	// ErrCodeInvoiceNotFinalized is used when an invoice stays in draft
	ErrCodeInvoiceNotFinalized = "ERR_INVOICE_NOT_FINALIZED"
	// ErrCodeArticleCreation is used when a required remote article could
	// not be created
	ErrCodeArticleCreation = "ERR_ARTICLE_CREATION"
)
