// Package version carries build metadata for the craftmcp binary. The values
// are injected with -ldflags at release time; Version also serves as the
// default MCP server version when server.version is not configured.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
