package document

import (
	"context"

	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/craft"
)

// Fetcher retrieves block subtrees from one document endpoint.
type Fetcher interface {
	FetchBlocks(
		ctx context.Context, document, endpoint string, opts craft.FetchOptions,
	) ([]domain.Block, error)
}
