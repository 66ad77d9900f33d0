package search

import (
	"context"

	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/craft"
)

// Searcher issues a pattern search against one document endpoint.
type Searcher interface {
	SearchBlocks(
		ctx context.Context, document, endpoint string, opts craft.SearchOptions,
	) ([]domain.SearchResult, error)
}
