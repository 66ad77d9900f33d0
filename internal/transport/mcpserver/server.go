// Package mcpserver exposes the tool surface over the Model Context
// Protocol, on stdio for local clients and over SSE for remote ones.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/mattymil/craft-mcp-wrapper/internal/tools"
)

// New builds an MCP server with the five document tools registered.
func New(toolSvc *tools.Service, name, version string, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	defs := definitionIndex()

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.ToolListDocuments,
		Description: defs[tools.ToolListDocuments],
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
		out, err := toolSvc.ListDocuments(ctx)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.ToolSearchAllNotes,
		Description: defs[tools.ToolSearchAllNotes],
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args tools.SearchAllArgs) (*mcp.CallToolResult, any, error) {
		out, err := toolSvc.SearchAllNotes(ctx, args)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.ToolSearchDocument,
		Description: defs[tools.ToolSearchDocument],
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args tools.SearchDocumentArgs) (*mcp.CallToolResult, any, error) {
		out, err := toolSvc.SearchDocument(ctx, args)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.ToolReadDocument,
		Description: defs[tools.ToolReadDocument],
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args tools.ReadDocumentArgs) (*mcp.CallToolResult, any, error) {
		out, err := toolSvc.ReadDocument(ctx, args)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        tools.ToolReadBlock,
		Description: defs[tools.ToolReadBlock],
	}, func(ctx context.Context, _ *mcp.CallToolRequest, args tools.ReadBlockArgs) (*mcp.CallToolResult, any, error) {
		out, err := toolSvc.ReadBlock(ctx, args)
		return nil, out, err
	})

	logger.Info("mcp server built",
		zap.String("name", name),
		zap.String("version", version),
		zap.Int("tools", len(defs)),
	)
	return server
}

// RunStdio serves a single MCP session on stdin/stdout until ctx is done or
// the client disconnects.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

func definitionIndex() map[string]string {
	out := make(map[string]string)
	for _, d := range tools.Definitions() {
		out[d.Name] = d.Description
	}
	return out
}
