// Package tools is the protocol-neutral tool surface. Every transport (MCP
// stdio, MCP SSE, REST) calls through here, so argument validation, unknown
// document handling, size bounding, and metrics behave identically no matter
// how a tool was invoked.
package tools

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/metrics"
	"github.com/mattymil/craft-mcp-wrapper/internal/truncate"
	"github.com/mattymil/craft-mcp-wrapper/internal/usecase/document"
	"github.com/mattymil/craft-mcp-wrapper/internal/usecase/search"
)

// Tool names exposed on every transport.
const (
	ToolListDocuments  = "list_documents"
	ToolSearchAllNotes = "search_all_notes"
	ToolSearchDocument = "search_document"
	ToolReadDocument   = "read_document"
	ToolReadBlock      = "read_block"
)

// SearchAllArgs are the search_all_notes arguments.
type SearchAllArgs struct {
	Query         string `json:"query" jsonschema:"search pattern to match against block content"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"match case exactly (default false)"`
}

// SearchDocumentArgs are the search_document arguments.
type SearchDocumentArgs struct {
	DocumentName  string `json:"documentName" jsonschema:"name of the configured document to search"`
	Query         string `json:"query" jsonschema:"search pattern to match against block content"`
	CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"match case exactly (default false)"`
}

// ReadDocumentArgs are the read_document arguments.
type ReadDocumentArgs struct {
	DocumentName string `json:"documentName" jsonschema:"name of the configured document to read"`
	MaxDepth     int    `json:"maxDepth,omitempty" jsonschema:"limit on block tree depth; omit for the upstream default"`
}

// ReadBlockArgs are the read_block arguments.
type ReadBlockArgs struct {
	DocumentName string `json:"documentName" jsonschema:"name of the configured document"`
	BlockID      string `json:"blockId" jsonschema:"id of the block to read"`
}

// Service wires the usecases behind the five tools and bounds every response.
type Service struct {
	search    *search.Service
	documents *document.Service
	truncator *truncate.Truncator
	maxBytes  int
	logger    *zap.Logger
}

// New creates the tool surface. maxBytes is the serialized response budget.
func New(
	searchSvc *search.Service,
	documentSvc *document.Service,
	truncator *truncate.Truncator,
	maxBytes int,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		search:    searchSvc,
		documents: documentSvc,
		truncator: truncator,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// ListDocuments returns the configured document set.
func (s *Service) ListDocuments(_ context.Context) (any, error) {
	return s.finish(ToolListDocuments, s.documents.List(), nil)
}

// SearchAllNotes searches every configured document and aggregates outcomes.
func (s *Service) SearchAllNotes(ctx context.Context, args SearchAllArgs) (any, error) {
	if args.Query == "" {
		return s.finish(ToolSearchAllNotes, nil,
			domain.NewValidationError("query", "must not be empty"))
	}
	return s.finish(ToolSearchAllNotes,
		s.search.SearchAll(ctx, args.Query, args.CaseSensitive), nil)
}

// SearchDocument searches a single named document.
func (s *Service) SearchDocument(ctx context.Context, args SearchDocumentArgs) (any, error) {
	if args.DocumentName == "" {
		return s.finish(ToolSearchDocument, nil,
			domain.NewValidationError("documentName", "must not be empty"))
	}
	if args.Query == "" {
		return s.finish(ToolSearchDocument, nil,
			domain.NewValidationError("query", "must not be empty"))
	}
	res, err := s.search.SearchDocument(ctx, args.DocumentName, args.Query, args.CaseSensitive)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return s.finish(ToolSearchDocument, s.unknownDocument(args.DocumentName), nil)
	}
	return s.finish(ToolSearchDocument, res, err)
}

// ReadDocument reads the block tree of a named document.
func (s *Service) ReadDocument(ctx context.Context, args ReadDocumentArgs) (any, error) {
	if args.DocumentName == "" {
		return s.finish(ToolReadDocument, nil,
			domain.NewValidationError("documentName", "must not be empty"))
	}
	if args.MaxDepth < 0 {
		return s.finish(ToolReadDocument, nil,
			domain.NewValidationError("maxDepth", "must not be negative"))
	}
	res, err := s.documents.ReadDocument(ctx, args.DocumentName, args.MaxDepth)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return s.finish(ToolReadDocument, s.unknownDocument(args.DocumentName), nil)
	}
	return s.finish(ToolReadDocument, res, err)
}

// ReadBlock reads a single block subtree by id.
func (s *Service) ReadBlock(ctx context.Context, args ReadBlockArgs) (any, error) {
	if args.DocumentName == "" {
		return s.finish(ToolReadBlock, nil,
			domain.NewValidationError("documentName", "must not be empty"))
	}
	if args.BlockID == "" {
		return s.finish(ToolReadBlock, nil,
			domain.NewValidationError("blockId", "must not be empty"))
	}
	res, err := s.documents.ReadBlock(ctx, args.DocumentName, args.BlockID)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return s.finish(ToolReadBlock, s.unknownDocument(args.DocumentName), nil)
	}
	return s.finish(ToolReadBlock, res, err)
}

// unknownDocument builds the lookup-miss payload listing the valid names.
func (s *Service) unknownDocument(name string) domain.UnknownDocument {
	return domain.UnknownDocument{
		Error:              fmt.Sprintf("document %q not found", name),
		AvailableDocuments: s.documents.Names(),
	}
}

// finish records metrics and bounds the payload to the response budget.
func (s *Service) finish(tool string, payload any, err error) (any, error) {
	if err != nil {
		metrics.ToolCallsTotal.WithLabelValues(tool, "error").Inc()
		return nil, err
	}
	metrics.ToolCallsTotal.WithLabelValues(tool, "ok").Inc()

	bounded := s.truncator.Bound(payload, s.maxBytes)
	if bounded.Metadata.Truncated {
		metrics.ResponsesTruncatedTotal.WithLabelValues(tool).Inc()
		s.logger.Info("response truncated",
			zap.String("tool", tool),
			zap.Int("original_size", bounded.Metadata.OriginalSize),
			zap.Int("size", bounded.Metadata.Size),
		)
	}
	return bounded.Data, nil
}
