// Package craftmcp provides a Go client for the craft-mcp-wrapper REST
// facade. It covers the same five operations the MCP transports expose:
//
//	client := craftmcp.New("http://localhost:8080",
//	    craftmcp.WithAPIKey("secret"),
//	)
//	docs, _ := client.ListDocuments(ctx)
//	res, _ := client.SearchAll(ctx, "deadline", false)
//	content, _ := client.ReadDocument(ctx, "Notes", 3)
//
// Responses that exceed the server's size budget come back rewritten; the
// Truncated helper on raw payloads reports whether a cut happened.
package craftmcp
