package craftmcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client is the craft-mcp-wrapper SDK entry point.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client for the REST facade at baseURL.
func New(baseURL string, opts ...Option) *Client {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		httpClient: hc,
	}
}

// Health reports the server status and per-document upstream checks.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	// 503 carries a valid degraded body; decode it instead of failing.
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
	if err != nil && out.Status == "" {
		return Health{}, err
	}
	return out, nil
}

// ListTools returns the tool definitions the server exposes.
func (c *Client) ListTools(ctx context.Context) (ToolList, error) {
	var out ToolList
	if err := c.do(ctx, http.MethodGet, "/tools", nil, nil, &out); err != nil {
		return ToolList{}, err
	}
	return out, nil
}

// CallTool invokes a tool by name with raw arguments and returns the result
// payload as decoded JSON.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (Payload, error) {
	body := map[string]any{"name": name}
	if args != nil {
		body["arguments"] = args
	}
	var out struct {
		Success bool    `json:"success"`
		Result  Payload `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, "/tools/call", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// ListDocuments returns the configured document set.
func (c *Client) ListDocuments(ctx context.Context) (DocumentList, error) {
	var out DocumentList
	if err := c.do(ctx, http.MethodGet, "/documents", nil, nil, &out); err != nil {
		return DocumentList{}, err
	}
	return out, nil
}

// SearchAll searches every configured document.
func (c *Client) SearchAll(ctx context.Context, query string, caseSensitive bool) (SearchAllResult, error) {
	var out SearchAllResult
	body := searchRequest{Query: query, CaseSensitive: caseSensitive}
	if err := c.do(ctx, http.MethodPost, "/search", nil, body, &out); err != nil {
		return SearchAllResult{}, err
	}
	return out, nil
}

// SearchDocument searches a single named document. An unknown name comes
// back as a payload listing the valid names; check AvailableDocuments.
func (c *Client) SearchDocument(
	ctx context.Context, documentName, query string, caseSensitive bool,
) (Payload, error) {
	var out Payload
	body := searchRequest{Query: query, CaseSensitive: caseSensitive}
	path := "/search/" + url.PathEscape(documentName)
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadDocument reads the block tree of a named document. maxDepth <= 0
// leaves the depth to the server default.
func (c *Client) ReadDocument(ctx context.Context, documentName string, maxDepth int) (Payload, error) {
	q := url.Values{}
	if maxDepth > 0 {
		q.Set("maxDepth", strconv.Itoa(maxDepth))
	}
	var out Payload
	path := "/document/" + url.PathEscape(documentName)
	if err := c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadBlock reads a single block subtree by id.
func (c *Client) ReadBlock(ctx context.Context, documentName, blockID string) (Payload, error) {
	var out Payload
	path := "/document/" + url.PathEscape(documentName) + "/block/" + url.PathEscape(blockID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do issues one request and decodes the response. Non-2xx responses are
// returned as *APIError.
func (c *Client) do(
	ctx context.Context, method, path string, q url.Values, body, out any,
) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("craftmcp: encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("craftmcp: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("craftmcp: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("craftmcp: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		// Degraded health still carries a body the caller may want.
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("craftmcp: decode response: %w", err)
	}
	return nil
}
