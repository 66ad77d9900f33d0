// Package search fans a pattern search out across every configured document
// and aggregates the per-document outcomes. A failing document never aborts
// its siblings; its failure is captured as data on that document's entry.
package search

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mattymil/craft-mcp-wrapper/internal/config"
	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/craft"
)

// Service aggregates searches across the configured documents.
type Service struct {
	documents []config.Document
	searcher  Searcher
	logger    *zap.Logger
}

// New creates a search service over the configured document set.
func New(documents []config.Document, searcher Searcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{documents: documents, searcher: searcher, logger: logger}
}

// SearchAll searches every configured document concurrently and collects the
// per-document outcomes. The returned Results slice always has one entry per
// configured document, in configuration order; TotalResults counts matches
// from successful documents only. SearchAll itself never fails.
func (s *Service) SearchAll(ctx context.Context, query string, caseSensitive bool) domain.SearchAllResult {
	results := make([]domain.DocumentSearchResult, len(s.documents))

	var wg sync.WaitGroup
	for i, doc := range s.documents {
		wg.Add(1)
		go func(i int, doc config.Document) {
			defer wg.Done()
			defer func() {
				// A panic in one document's search is that document's
				// failure, not the batch's.
				if r := recover(); r != nil {
					s.logger.Error("search panic",
						zap.String("document", doc.Name),
						zap.Any("panic", r),
					)
					results[i] = domain.DocumentSearchResult{
						DocumentName: doc.Name,
						Error:        fmt.Sprintf("internal error: %v", r),
					}
				}
			}()
			results[i] = s.searchOne(ctx, doc, query, caseSensitive)
		}(i, doc)
	}
	wg.Wait()

	total := 0
	var failed []domain.DocumentSearchResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
			continue
		}
		total += len(r.Results)
	}

	out := domain.SearchAllResult{
		Query:             query,
		CaseSensitive:     caseSensitive,
		TotalResults:      total,
		DocumentsSearched: len(s.documents),
		Results:           results,
	}
	if len(failed) > 0 {
		out.Errors = failed
	}
	return out
}

// SearchDocument searches a single document by name. An unknown name returns
// domain.ErrDocumentNotFound; an upstream failure is captured on the result.
func (s *Service) SearchDocument(
	ctx context.Context, name, query string, caseSensitive bool,
) (domain.DocumentSearchResult, error) {
	doc, ok := s.lookup(name)
	if !ok {
		return domain.DocumentSearchResult{}, fmt.Errorf("%q: %w", name, domain.ErrDocumentNotFound)
	}
	return s.searchOne(ctx, doc, query, caseSensitive), nil
}

// searchOne runs the upstream search for one document and stamps the
// document name on every match.
func (s *Service) searchOne(
	ctx context.Context, doc config.Document, query string, caseSensitive bool,
) domain.DocumentSearchResult {
	matches, err := s.searcher.SearchBlocks(ctx, doc.Name, doc.APIEndpoint, craft.SearchOptions{
		Pattern:       query,
		CaseSensitive: caseSensitive,
	})
	if err != nil {
		s.logger.Warn("document search failed",
			zap.String("document", doc.Name),
			zap.Error(err),
		)
		return domain.DocumentSearchResult{DocumentName: doc.Name, Error: err.Error()}
	}

	for i := range matches {
		matches[i].DocumentName = doc.Name
	}
	return domain.DocumentSearchResult{DocumentName: doc.Name, Results: matches}
}

func (s *Service) lookup(name string) (config.Document, bool) {
	for _, d := range s.documents {
		if d.Name == name {
			return d, true
		}
	}
	return config.Document{}, false
}
