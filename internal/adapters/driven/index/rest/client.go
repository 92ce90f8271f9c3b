// Package rest implements the IndexService port over the document
// index service's REST API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.IndexService = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// DefaultQPS throttles outbound requests proactively, below the
	// service's enforced limit, so most runs never see a 429.
	DefaultQPS = 20

	// maxErrorBody bounds how much of an error response is read for the
	// StatusError message.
	maxErrorBody = 4096
)

// fingerprintField is the indexed metadata field holding the content
// hash of each document.
const fingerprintField = "extracted_metadata.fingerprint"

// Config holds configuration for the REST client.
type Config struct {
	// BaseURL is the service base URL, without a trailing slash.
	BaseURL string

	// APIKey authenticates requests as a bearer token.
	APIKey string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// QPS caps the outbound request rate (default: 20).
	QPS float64
}

// Client talks to the remote document index. Failures with a remote
// status are returned as *driven.StatusError so core services can
// classify them without inspecting error text.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewClient creates a REST client for the index service.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.QPS <= 0 {
		cfg.QPS = DefaultQPS
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(cfg.QPS), 1),
	}
}

// partitionsResponse is the list-partitions wire format.
type partitionsResponse struct {
	Partitions []struct {
		PartitionID string `json:"partition_id"`
		Name        string `json:"name"`
		ReadOnly    bool   `json:"read_only"`
	} `json:"partitions"`
}

// collectionsResponse is the list-collections wire format.
type collectionsResponse struct {
	Collections []struct {
		CollectionID string `json:"collection_id"`
		Name         string `json:"name"`
	} `json:"collections"`
}

// queryResponse is the fingerprint-query wire format. MatchingResults
// is the full match count even when the results page is truncated.
type queryResponse struct {
	MatchingResults int `json:"matching_results"`
	Results         []struct {
		ExtractedMetadata struct {
			Fingerprint string `json:"fingerprint"`
		} `json:"extracted_metadata"`
	} `json:"results"`
}

// errorResponse is the service's error body, when it sends one.
type errorResponse struct {
	Error string `json:"error"`
}

// ListPartitions returns all partitions visible to the credentials.
func (c *Client) ListPartitions(ctx context.Context) ([]domain.Partition, error) {
	var parsed partitionsResponse
	if err := c.get(ctx, "/v1/partitions", nil, &parsed); err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}

	partitions := make([]domain.Partition, len(parsed.Partitions))
	for i, p := range parsed.Partitions {
		partitions[i] = domain.Partition{ID: p.PartitionID, Name: p.Name, ReadOnly: p.ReadOnly}
	}
	return partitions, nil
}

// ListCollections returns the collections within a partition.
func (c *Client) ListCollections(ctx context.Context, partitionID string) ([]domain.Collection, error) {
	path := fmt.Sprintf("/v1/partitions/%s/collections", url.PathEscape(partitionID))

	var parsed collectionsResponse
	if err := c.get(ctx, path, nil, &parsed); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	collections := make([]domain.Collection, len(parsed.Collections))
	for i, col := range parsed.Collections {
		collections[i] = domain.Collection{ID: col.CollectionID, Name: col.Name}
	}
	return collections, nil
}

// QueryFingerprints returns the total match count for fingerprints
// starting with prefix, plus up to maxResults of the values.
func (c *Client) QueryFingerprints(ctx context.Context, target domain.Target, prefix string, maxResults int) (int, []string, error) {
	path := fmt.Sprintf("/v1/partitions/%s/collections/%s/query",
		url.PathEscape(target.PartitionID), url.PathEscape(target.CollectionID))
	params := url.Values{
		"filter": {fingerprintField + "::" + prefix + "*"},
		"return": {fingerprintField},
		"count":  {strconv.Itoa(maxResults)},
	}

	var parsed queryResponse
	if err := c.get(ctx, path, params, &parsed); err != nil {
		return 0, nil, fmt.Errorf("query fingerprints: %w", err)
	}

	fingerprints := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		fingerprints = append(fingerprints, r.ExtractedMetadata.Fingerprint)
	}
	return parsed.MatchingResults, fingerprints, nil
}

// UpsertDocument creates or replaces the document stored under
// documentID with the given content.
func (c *Client) UpsertDocument(ctx context.Context, target domain.Target, documentID string, content io.Reader, contentType string) error {
	path := fmt.Sprintf("/v1/partitions/%s/collections/%s/documents/%s",
		url.PathEscape(target.PartitionID), url.PathEscape(target.CollectionID), url.PathEscape(documentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, content)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(ctx, req)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("upsert document: %w", c.statusError(resp))
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// get issues a GET request and decodes a JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do applies the proactive throttle and authentication, then sends.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// statusError builds the structured error for a non-2xx response,
// honouring a Retry-After header when present.
func (c *Client) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := strings.TrimSpace(string(body))
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		message = parsed.Error
	}

	var retryAfter time.Duration
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}

	return &driven.StatusError{
		Code:       resp.StatusCode,
		Message:    message,
		RetryAfter: retryAfter,
	}
}
