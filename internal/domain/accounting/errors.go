package accounting

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitExceeded is returned once the configured retry budget for
	// HTTP 429 responses is exhausted.
	ErrRateLimitExceeded = errors.New("rate limit exceeded, max retries reached")

	// ErrArticleNotFound is returned when a lookup matched no remote article.
	ErrArticleNotFound = errors.New("article not found")
)

// RemoteAPIError is a non-retryable rejection from the remote accounting API.
// Status and Body are preserved for diagnosis.
type RemoteAPIError struct {
	Status int
	Body   string
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("remote api error: status %d: %s", e.Status, e.Body)
}

// IsConflict reports whether the error is a remote version conflict.
func IsConflict(err error) bool {
	var apiErr *RemoteAPIError
	return errors.As(err, &apiErr) && apiErr.Status == 409
}
