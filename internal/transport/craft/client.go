// Package craft is the HTTP client for the upstream Craft-style document
// API. It issues single-attempt GET requests against a document's base
// endpoint; failure isolation across documents is the caller's job.
package craft

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/metrics"
)

// DefaultTimeout bounds a single upstream call. There are no retries.
const DefaultTimeout = 30 * time.Second

// errorBodyLimit caps how much of an upstream error body is read.
const errorBodyLimit = 1024

// Client communicates with one or more Craft document HTTP APIs.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a document API client. A non-positive timeout falls
// back to DefaultTimeout.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchOptions select a block subtree. An empty ID fetches the document root.
type FetchOptions struct {
	ID            string
	MaxDepth      int
	FetchMetadata bool
}

// SearchOptions describe a pattern search.
type SearchOptions struct {
	Pattern          string
	CaseSensitive    bool
	BeforeBlockCount int
	AfterBlockCount  int
}

// FetchBlocks retrieves a block subtree by id, or the document root when the
// id is empty. The upstream may answer with a single block or an array;
// single objects are normalized to a one-element slice.
func (c *Client) FetchBlocks(
	ctx context.Context, document, endpoint string, opts FetchOptions,
) ([]domain.Block, error) {
	q := url.Values{}
	if opts.ID != "" {
		q.Set("id", opts.ID)
	}
	if opts.MaxDepth > 0 {
		q.Set("maxDepth", strconv.Itoa(opts.MaxDepth))
	}
	if opts.FetchMetadata {
		q.Set("fetchMetadata", "true")
	}

	raw, err := c.get(ctx, document, "fetch_blocks", endpoint+"/blocks", q)
	if err != nil {
		return nil, err
	}

	blocks, err := decodeBlocks(raw)
	if err != nil {
		return nil, fmt.Errorf("decode blocks: %s: %w", err, domain.ErrUpstream)
	}
	return blocks, nil
}

// SearchBlocks runs a pattern search and wraps each matched block into a
// SearchResult. The document name is left for the aggregator to stamp.
func (c *Client) SearchBlocks(
	ctx context.Context, document, endpoint string, opts SearchOptions,
) ([]domain.SearchResult, error) {
	q := url.Values{}
	q.Set("pattern", opts.Pattern)
	if opts.CaseSensitive {
		q.Set("caseSensitive", "true")
	}
	if opts.BeforeBlockCount > 0 {
		q.Set("beforeBlockCount", strconv.Itoa(opts.BeforeBlockCount))
	}
	if opts.AfterBlockCount > 0 {
		q.Set("afterBlockCount", strconv.Itoa(opts.AfterBlockCount))
	}

	raw, err := c.get(ctx, document, "search_blocks", endpoint+"/blocks/search", q)
	if err != nil {
		return nil, err
	}

	var blocks []domain.Block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, fmt.Errorf("decode search results: %s: %w", err, domain.ErrUpstream)
	}

	results := make([]domain.SearchResult, len(blocks))
	for i, b := range blocks {
		results[i] = domain.SearchResult{Block: b}
	}
	return results, nil
}

// Ping checks that a document endpoint answers at all. It fetches the
// document root at depth 1 and discards the body.
func (c *Client) Ping(ctx context.Context, document, endpoint string) error {
	q := url.Values{}
	q.Set("maxDepth", "1")
	_, err := c.get(ctx, document, "ping", endpoint+"/blocks", q)
	return err
}

// get issues a single GET and returns the response body. All failure modes
// (transport, timeout, non-2xx) come back as an error wrapping
// domain.ErrUpstream with a message derived from the response body.
func (c *Client) get(
	ctx context.Context, document, operation, rawURL string, q url.Values,
) ([]byte, error) {
	u := rawURL
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(document, operation, "error").Inc()
		c.logger.Warn("upstream request failed",
			zap.String("document", document),
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s request failed: %s: %w", operation, err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequestsTotal.WithLabelValues(document, operation, "error").Inc()
		detail := errorDetail(resp.Body)
		return nil, fmt.Errorf(
			"document API error %d: %s: %w", resp.StatusCode, detail, domain.ErrUpstream,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(document, operation, "error").Inc()
		return nil, fmt.Errorf("read response: %s: %w", err, domain.ErrUpstream)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(document, operation, "success").Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(document, operation).Observe(duration.Seconds())
	return body, nil
}

// decodeBlocks accepts either a JSON array of blocks or a single block object.
func decodeBlocks(raw []byte) ([]domain.Block, error) {
	var blocks []domain.Block
	if err := json.Unmarshal(raw, &blocks); err == nil {
		return blocks, nil
	}

	var single domain.Block
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []domain.Block{single}, nil
}

// errorDetail extracts a human-readable message from an upstream error body:
// the JSON "error" or "message" field when present, else the raw body prefix.
func errorDetail(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, errorBodyLimit))
	if len(body) == 0 {
		return "empty error response"
	}

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return string(body)
}
