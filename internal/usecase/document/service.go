// Package document reads single documents and blocks from the configured
// upstream APIs. Upstream failures surface as soft per-document errors on
// the result payload; only an unknown document name is a hard error.
package document

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mattymil/craft-mcp-wrapper/internal/config"
	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
	"github.com/mattymil/craft-mcp-wrapper/internal/transport/craft"
)

// Service serves document-level reads.
type Service struct {
	documents []config.Document
	fetcher   Fetcher
	logger    *zap.Logger
}

// New creates a document service over the configured document set.
func New(documents []config.Document, fetcher Fetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{documents: documents, fetcher: fetcher, logger: logger}
}

// List returns the configured documents and their count.
func (s *Service) List() domain.DocumentList {
	infos := make([]domain.DocumentInfo, len(s.documents))
	for i, d := range s.documents {
		infos[i] = domain.DocumentInfo{Name: d.Name, APIEndpoint: d.APIEndpoint}
	}
	return domain.DocumentList{Documents: infos, Count: len(infos)}
}

// Names returns the configured document names in configuration order.
func (s *Service) Names() []string {
	names := make([]string, len(s.documents))
	for i, d := range s.documents {
		names[i] = d.Name
	}
	return names
}

// ReadDocument fetches the root block tree of a named document. maxDepth <= 0
// leaves the depth to the upstream default.
func (s *Service) ReadDocument(
	ctx context.Context, name string, maxDepth int,
) (domain.DocumentContent, error) {
	doc, ok := s.lookup(name)
	if !ok {
		return domain.DocumentContent{}, fmt.Errorf("%q: %w", name, domain.ErrDocumentNotFound)
	}

	out := domain.DocumentContent{DocumentName: name, MaxDepth: maxDepth}
	blocks, err := s.fetcher.FetchBlocks(ctx, doc.Name, doc.APIEndpoint, craft.FetchOptions{
		MaxDepth: maxDepth,
	})
	if err != nil {
		s.logger.Warn("read document failed", zap.String("document", name), zap.Error(err))
		out.Error = err.Error()
		return out, nil
	}
	out.Content = blocks
	return out, nil
}

// ReadBlock fetches a single block subtree by id.
func (s *Service) ReadBlock(
	ctx context.Context, name, blockID string,
) (domain.BlockContent, error) {
	doc, ok := s.lookup(name)
	if !ok {
		return domain.BlockContent{}, fmt.Errorf("%q: %w", name, domain.ErrDocumentNotFound)
	}

	out := domain.BlockContent{DocumentName: name, BlockID: blockID}
	blocks, err := s.fetcher.FetchBlocks(ctx, doc.Name, doc.APIEndpoint, craft.FetchOptions{
		ID: blockID,
	})
	if err != nil {
		s.logger.Warn("read block failed",
			zap.String("document", name),
			zap.String("block_id", blockID),
			zap.Error(err),
		)
		out.Error = err.Error()
		return out, nil
	}
	if len(blocks) == 0 {
		out.Error = fmt.Sprintf("block %q not present in upstream response", blockID)
		return out, nil
	}
	out.Block = blocks[0]
	return out, nil
}

func (s *Service) lookup(name string) (config.Document, bool) {
	for _, d := range s.documents {
		if d.Name == name {
			return d, true
		}
	}
	return config.Document{}, false
}
