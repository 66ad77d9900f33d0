package craftmcp

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/mattymil/craft-mcp-wrapper/internal/config"
	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/tools"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/craft"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/rest"
	"github.com/mattymil/craft-mcp-wrapper/internal/truncate"
	"github.com/mattymil/craft-mcp-wrapper/internal/usecase/document"
	"github.com/mattymil/craft-mcp-wrapper/internal/usecase/search"
)

type stubUpstream struct {
	searchResults []domain.SearchResult
	searchErr     error
	blocks        []domain.Block
	fetchErr      error
}

func (s *stubUpstream) SearchBlocks(
	_ context.Context, _, _ string, _ craft.SearchOptions,
) ([]domain.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	out := make([]domain.SearchResult, len(s.searchResults))
	copy(out, s.searchResults)
	return out, nil
}

func (s *stubUpstream) FetchBlocks(
	_ context.Context, _, _ string, _ craft.FetchOptions,
) ([]domain.Block, error) {
	return s.blocks, s.fetchErr
}

func (s *stubUpstream) Ping(_ context.Context, _, _ string) error {
	return nil
}

func newTestServer(t *testing.T, upstream *stubUpstream, apiKeys []string) *httptest.Server {
	t.Helper()
	docs := []config.Document{
		{Name: "Notes", APIEndpoint: "http://notes.local/api"},
		{Name: "Work", APIEndpoint: "http://work.local/api"},
	}
	toolSvc := tools.New(
		search.New(docs, upstream, nil),
		document.New(docs, upstream, nil),
		truncate.New(truncate.Options{}),
		1<<20,
		nil,
	)
	router := rest.NewServer(toolSvc, docs, upstream, nil).Router(apiKeys)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{}, nil)
	client := New(srv.URL)

	health, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Status != "ok" || health.Checks["Notes"] != "ok" {
		t.Errorf("unexpected health %+v", health)
	}
}

func TestListTools(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{}, nil)
	client := New(srv.URL)

	list, err := client.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if list.Count != 5 || len(list.Tools) != 5 {
		t.Errorf("unexpected tool list %+v", list)
	}
}

func TestListDocuments(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{}, nil)
	client := New(srv.URL)

	list, err := client.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if list.Count != 2 || list.Documents[0].Name != "Notes" {
		t.Errorf("unexpected document list %+v", list)
	}
}

func TestSearchAll(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{searchResults: []domain.SearchResult{
		{Block: domain.Block{"id": "b1", "content": "todo: ship it"}},
	}}, nil)
	client := New(srv.URL)

	res, err := client.SearchAll(context.Background(), "todo", false)
	if err != nil {
		t.Fatalf("SearchAll failed: %v", err)
	}
	if res.TotalResults != 2 || res.DocumentsSearched != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	if len(res.Results) != 2 || res.Results[0].DocumentName != "Notes" {
		t.Errorf("unexpected entries %+v", res.Results)
	}
}

func TestSearchAll_PartialFailure(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{searchErr: errors.New("connection refused")}, nil)
	client := New(srv.URL)

	res, err := client.SearchAll(context.Background(), "todo", false)
	if err != nil {
		t.Fatalf("SearchAll failed: %v", err)
	}
	if res.TotalResults != 0 || len(res.Errors) != 2 {
		t.Errorf("unexpected result %+v", res)
	}
	for _, entry := range res.Results {
		if entry.Error == "" {
			t.Errorf("expected per-document error, got %+v", entry)
		}
	}
}

func TestSearchDocument_Unknown(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{}, nil)
	client := New(srv.URL)

	payload, err := client.SearchDocument(context.Background(), "Missing", "todo", false)
	if err != nil {
		t.Fatalf("SearchDocument failed: %v", err)
	}
	if payload.ErrorMessage() == "" {
		t.Error("expected error message on unknown document payload")
	}
	available := payload.AvailableDocuments()
	if len(available) != 2 || available[0] != "Notes" {
		t.Errorf("unexpected available documents %v", available)
	}
}

func TestReadBlock_MissingUpstream(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{
		fetchErr: errors.New("document API error 404: block not found"),
	}, nil)
	client := New(srv.URL)

	payload, err := client.ReadBlock(context.Background(), "Notes", "missing-id")
	if err != nil {
		t.Fatalf("ReadBlock failed: %v", err)
	}
	if payload["documentName"] != "Notes" || payload["blockId"] != "missing-id" {
		t.Errorf("unexpected payload %v", payload)
	}
	if payload.ErrorMessage() == "" {
		t.Error("expected soft error on the payload")
	}
}

func TestReadDocument(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{blocks: []domain.Block{
		{"id": "root", "type": "page"},
	}}, nil)
	client := New(srv.URL)

	payload, err := client.ReadDocument(context.Background(), "Notes", 2)
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if payload["documentName"] != "Notes" {
		t.Errorf("unexpected payload %v", payload)
	}
	if payload.Truncated() {
		t.Error("small payload must not be truncated")
	}
}

func TestCallTool(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{}, nil)
	client := New(srv.URL)

	result, err := client.CallTool(context.Background(), "list_documents", nil)
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if result["count"] != float64(2) {
		t.Errorf("unexpected result %v", result)
	}
}

func TestCallTool_ValidationError(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{}, nil)
	client := New(srv.URL)

	_, err := client.CallTool(context.Background(), "search_all_notes", map[string]any{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 400 {
		t.Errorf("expected 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("expected the error message from the failure envelope")
	}
}

func TestAPIKey(t *testing.T) {
	srv := newTestServer(t, &stubUpstream{}, []string{"secret"})

	_, err := New(srv.URL).ListTools(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("expected 401 without key, got %v", err)
	}

	if _, err := New(srv.URL, WithAPIKey("secret")).ListTools(context.Background()); err != nil {
		t.Fatalf("expected success with key, got %v", err)
	}
}
