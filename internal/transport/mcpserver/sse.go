package mcpserver

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mattymil/craft-mcp-wrapper/internal/metrics"
)

// SSEHandler serves MCP over SSE. Every connection gets the same shared
// server; session management and message routing are handled by the SDK.
func SSEHandler(server *mcp.Server) http.Handler {
	handler := mcp.NewSSEHandler(func(_ *http.Request) *mcp.Server {
		return server
	}, nil)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// GET opens a long-lived event stream; POSTs are per-message and
		// not worth a gauge.
		if r.Method == http.MethodGet {
			metrics.SSESessionsOpen.Inc()
			defer metrics.SSESessionsOpen.Dec()
		}
		handler.ServeHTTP(w, r)
	})
}
