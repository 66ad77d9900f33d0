package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mattymil/craft-mcp-wrapper/internal/config"
	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/craft"
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

func newService(t *testing.T, upstream *stubUpstream, maxBytes int) *Service {
	t.Helper()
	docs := []config.Document{
		{Name: "Notes", APIEndpoint: "http://notes.local/api"},
		{Name: "Work", APIEndpoint: "http://work.local/api"},
	}
	return New(
		search.New(docs, upstream, nil),
		document.New(docs, upstream, nil),
		truncate.New(truncate.Options{}),
		maxBytes,
		nil,
	)
}

func TestListDocuments(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	out, err := svc.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := out.(domain.DocumentList)
	if !ok {
		t.Fatalf("unexpected payload type %T", out)
	}
	if list.Count != 2 || list.Documents[0].Name != "Notes" {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestSearchAllNotes_EmptyQuery(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	_, err := svc.SearchAllNotes(context.Background(), SearchAllArgs{})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "query") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestSearchDocument_UnknownName(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	out, err := svc.SearchDocument(context.Background(), SearchDocumentArgs{
		DocumentName: "Missing",
		Query:        "todo",
	})
	if err != nil {
		t.Fatalf("unknown document must be a payload, not an error: %v", err)
	}
	unknown, ok := out.(domain.UnknownDocument)
	if !ok {
		t.Fatalf("unexpected payload type %T", out)
	}
	if unknown.Error == "" {
		t.Error("expected non-empty error message")
	}
	if len(unknown.AvailableDocuments) != 2 || unknown.AvailableDocuments[0] != "Notes" {
		t.Errorf("unexpected availableDocuments %v", unknown.AvailableDocuments)
	}
}

func TestReadDocument_UnknownName(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	out, err := svc.ReadDocument(context.Background(), ReadDocumentArgs{DocumentName: "Missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out.(domain.UnknownDocument); !ok {
		t.Fatalf("unexpected payload type %T", out)
	}
}

func TestReadDocument_NegativeDepth(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	_, err := svc.ReadDocument(context.Background(), ReadDocumentArgs{
		DocumentName: "Notes",
		MaxDepth:     -1,
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestReadBlock_MissingArgs(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	cases := []struct {
		name  string
		args  ReadBlockArgs
		field string
	}{
		{"no document", ReadBlockArgs{BlockID: "b1"}, "documentName"},
		{"no block id", ReadBlockArgs{DocumentName: "Notes"}, "blockId"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReadBlock(context.Background(), tc.args)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error should name %q: %v", tc.field, err)
			}
		})
	}
}

func TestReadBlock_UpstreamFailureIsPayload(t *testing.T) {
	upstream := &stubUpstream{fetchErr: errors.New("document API error 404: block not found")}
	svc := newService(t, upstream, 1<<20)

	out, err := svc.ReadBlock(context.Background(), ReadBlockArgs{
		DocumentName: "Notes",
		BlockID:      "missing-id",
	})
	if err != nil {
		t.Fatalf("upstream failure must not be a call failure: %v", err)
	}
	content, ok := out.(domain.BlockContent)
	if !ok {
		t.Fatalf("unexpected payload type %T", out)
	}
	if content.BlockID != "missing-id" || content.Error == "" {
		t.Errorf("unexpected payload %+v", content)
	}
}

func TestInvoke_Dispatch(t *testing.T) {
	upstream := &stubUpstream{searchResults: []domain.SearchResult{
		{Block: domain.Block{"id": "b1"}},
	}}
	svc := newService(t, upstream, 1<<20)

	out, err := svc.Invoke(context.Background(), ToolSearchAllNotes, map[string]any{
		"query": "todo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, ok := out.(domain.SearchAllResult)
	if !ok {
		t.Fatalf("unexpected payload type %T", out)
	}
	if res.TotalResults != 2 || res.DocumentsSearched != 2 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestInvoke_UnknownTool(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	_, err := svc.Invoke(context.Background(), "drop_tables", nil)
	if !errors.Is(err, domain.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestInvoke_BadArgumentType(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	_, err := svc.Invoke(context.Background(), ToolReadDocument, map[string]any{
		"documentName": "Notes",
		"maxDepth":     "three",
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestInvoke_UnknownField(t *testing.T) {
	svc := newService(t, &stubUpstream{}, 1<<20)

	_, err := svc.Invoke(context.Background(), ToolReadBlock, map[string]any{
		"documentName": "Notes",
		"blockId":      "b1",
		"depth":        3,
	})
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOversizedResponseBounded(t *testing.T) {
	long := strings.Repeat("x", 4000)
	blocks := make([]domain.Block, 100)
	for i := range blocks {
		blocks[i] = domain.Block{"id": "b", "content": long}
	}
	svc := newService(t, &stubUpstream{blocks: blocks}, 8192)

	out, err := svc.ReadDocument(context.Background(), ReadDocumentArgs{DocumentName: "Notes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("truncated payload should be a map, got %T", out)
	}
	meta, ok := payload["_metadata"].(map[string]any)
	if !ok {
		t.Fatal("expected _metadata on truncated payload")
	}
	if meta["truncated"] != true {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	if len(defs) != 5 {
		t.Fatalf("expected 5 tools, got %d", len(defs))
	}
	want := []string{
		ToolListDocuments, ToolSearchAllNotes, ToolSearchDocument,
		ToolReadDocument, ToolReadBlock,
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("definition %d: expected %q, got %q", i, name, defs[i].Name)
		}
		if defs[i].Description == "" {
			t.Errorf("tool %q has no description", name)
		}
	}
}
