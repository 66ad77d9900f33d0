package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mattymil/craft-mcp-wrapper/internal/domain"
)

// Definition describes one tool for discovery endpoints.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Definitions returns the exposed tool set in a stable order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        ToolListDocuments,
			Description: "List the configured documents with their names and API endpoints.",
		},
		{
			Name:        ToolSearchAllNotes,
			Description: "Search every configured document for a pattern and aggregate the per-document results.",
		},
		{
			Name:        ToolSearchDocument,
			Description: "Search a single named document for a pattern.",
		},
		{
			Name:        ToolReadDocument,
			Description: "Read the block tree of a named document, optionally limited by depth.",
		},
		{
			Name:        ToolReadBlock,
			Description: "Read a single block subtree by id from a named document.",
		},
	}
}

// Invoke dispatches a tool call by name with loosely typed arguments. It is
// the entry point for transports that carry arguments as raw JSON objects.
func (s *Service) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case ToolListDocuments:
		return s.ListDocuments(ctx)
	case ToolSearchAllNotes:
		var a SearchAllArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return s.SearchAllNotes(ctx, a)
	case ToolSearchDocument:
		var a SearchDocumentArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return s.SearchDocument(ctx, a)
	case ToolReadDocument:
		var a ReadDocumentArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return s.ReadDocument(ctx, a)
	case ToolReadBlock:
		var a ReadBlockArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		return s.ReadBlock(ctx, a)
	default:
		return nil, fmt.Errorf("%q: %w", name, domain.ErrToolNotFound)
	}
}

// decodeArgs maps a raw argument object onto a typed argument struct. Type
// mismatches become validation errors rather than opaque decode failures.
func decodeArgs(args map[string]any, dst any) error {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return domain.NewValidationError("arguments", err.Error())
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("arguments", err.Error())
	}
	return nil
}
