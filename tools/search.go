package tools

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/fastfind/index"
	"github.com/lexandro/fastfind/record"
)

// DefaultMaxResults caps tool responses when the caller sets no limit.
const DefaultMaxResults = 200

// SearchArgs defines the input parameters for the fastfind_search tool.
type SearchArgs struct {
	Query      string `json:"query" jsonschema:"Substring to look for in indexed paths (or a glob when glob is true)"`
	FileName   bool   `json:"fileName,omitempty" jsonschema:"Match against the file name only. Requires an index built with the split layout"`
	Glob       bool   `json:"glob,omitempty" jsonschema:"Treat query as a doublestar glob matched against the whole path (e.g. **/*.go)"`
	IgnoreCase bool   `json:"ignoreCase,omitempty" jsonschema:"Match case-insensitively"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of paths to return (default 200)"`
}

// SearchHandler holds the dependencies for the search tool.
type SearchHandler struct {
	IndexPath string
	Layout    record.Layout
	Logger    *slog.Logger
	// ReadLock, if set, is held while the index file is read so a concurrent
	// rebuild cannot replace it mid-scan.
	ReadLock sync.Locker
}

// Handle processes a fastfind_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	if args.Query == "" {
		h.Logger.Warn("fastfind_search called with empty query")
		return errorResult("Error: query parameter is required"), nil, nil
	}

	maxResults := args.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	query := index.Query{Text: args.Query, Glob: args.Glob, IgnoreCase: args.IgnoreCase}
	if args.FileName {
		query.Mode = index.FileName
	}

	if h.ReadLock != nil {
		h.ReadLock.Lock()
		defer h.ReadLock.Unlock()
	}

	var paths []string
	result, err := index.Search(ctx, index.SearchOptions{
		IndexPath:  h.IndexPath,
		Layout:     h.Layout,
		Query:      query,
		MaxResults: maxResults,
		Logger:     h.Logger,
	}, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		h.Logger.Error("fastfind_search failed", "query", args.Query, "error", err)
		if errors.Is(err, index.ErrIO) {
			return errorResult("Search error: %v (run fastfind_build to create the index)", err), nil, nil
		}
		return errorResult("Search error: %v", err), nil, nil
	}

	h.Logger.Info("fastfind_search",
		"query", args.Query,
		"mode", query.Mode,
		"glob", args.Glob,
		"matches", len(paths),
		"elapsed", result.Elapsed,
	)

	return textResult(FormatSearchResults(paths, result, len(paths) >= maxResults)), nil, nil
}
