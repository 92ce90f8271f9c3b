package driven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
)

// IndexService is the remote document index the pipeline writes to.
// Implementations wrap the service's REST API; core services never see
// HTTP details beyond the structured StatusError.
type IndexService interface {
	// ListPartitions returns all partitions visible to the credentials,
	// including read-only ones.
	ListPartitions(ctx context.Context) ([]domain.Partition, error)

	// ListCollections returns the collections within a partition.
	ListCollections(ctx context.Context, partitionID string) ([]domain.Collection, error)

	// QueryFingerprints returns the total number of indexed documents
	// whose fingerprint starts with prefix, plus up to maxResults of the
	// fingerprint values themselves. When total exceeds maxResults the
	// returned page is truncated and the caller must subdivide.
	QueryFingerprints(ctx context.Context, target domain.Target, prefix string, maxResults int) (total int, fingerprints []string, err error)

	// UpsertDocument creates or replaces the document stored under
	// documentID. Replacing an ID with identical content is a no-op at
	// the service, which is what makes retries safe.
	UpsertDocument(ctx context.Context, target domain.Target, documentID string, content io.Reader, contentType string) error
}

// StatusError is a remote failure carrying the service's structured
// status code. Workers classify failures with errors.As on this type;
// error text is never parsed.
type StatusError struct {
	// Code is the HTTP status code reported by the service.
	Code int

	// Message is the service's error description, for logs only.
	Message string

	// RetryAfter is the service-suggested wait before retrying, when the
	// response carried one. Zero when absent.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("index service status %d", e.Code)
	}
	return fmt.Sprintf("index service status %d: %s", e.Code, e.Message)
}

// Is lets callers match the rate-limit class against domain.ErrRateLimited.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrRateLimited && e.Code == http.StatusTooManyRequests
}

// AsStatus extracts a StatusError from an error chain.
// Returns nil and false for non-remote errors.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
