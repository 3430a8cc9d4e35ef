package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/fastfind/tools"
)

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	version string,
	searchHandler *tools.SearchHandler,
	buildHandler *tools.BuildHandler,
	statusHandler *tools.StatusHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "fastfind",
			Version: version,
		},
		&mcp.ServerOptions{
			Instructions: `This server finds files and directories by path using a prebuilt flat index of one directory tree. A lookup is a single linear scan of the index file and never touches the tree itself.

- Use fastfind_search to find paths containing a substring, or matching a glob with glob=true
- Use fastfind_search with fileName=true to match file names only (split layout indexes)
- Use fastfind_build after large changes if the index is not being rebuilt automatically
- Use fastfind_status to see when the index was last built and how many records it holds`,
		},
	)

	// Register fastfind_search tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "fastfind_search",
		Description: `Find indexed paths by substring. Results come back in index order, one absolute path per line.

Query formats:
  - Plain text: case-sensitive substring (e.g., "handler")
  - glob=true: doublestar glob against the full path (e.g., "**/internal/**/*_test.go")

Options:
  - fileName: match the file name only instead of the whole path
  - ignoreCase: case-insensitive matching
  - maxResults: stop after this many matches (default 200)`,
	}, searchHandler.Handle)

	// Register fastfind_build tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fastfind_build",
		Description: "Rebuild the index from scratch by walking the configured root directory.",
	}, buildHandler.Handle)

	// Register fastfind_status tool
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "fastfind_status",
		Description: "Show index status: root directory, index file, layout, size, record count, and last build time.",
	}, statusHandler.Handle)

	return mcpServer
}
