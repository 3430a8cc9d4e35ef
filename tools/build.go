package tools

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/fastfind/index"
)

// BuildArgs defines the input parameters for the fastfind_build tool.
type BuildArgs struct{}

// BuildFunc rebuilds the index. It is provided by the caller, which owns the
// build configuration.
type BuildFunc func(ctx context.Context) (index.BuildResult, error)

// BuildHandler holds the dependencies for the build tool.
type BuildHandler struct {
	DoBuild BuildFunc
	Logger  *slog.Logger
}

// Handle processes a fastfind_build request.
func (h *BuildHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args BuildArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("fastfind_build started")

	result, err := h.DoBuild(ctx)
	if err != nil {
		h.Logger.Error("fastfind_build failed", "error", err)
		return errorResult("Build error: %v", err), nil, nil
	}

	h.Logger.Info("fastfind_build complete",
		"records", result.Records,
		"skipped", result.Skipped,
		"elapsed", result.Elapsed,
	)
	return textResult(FormatBuildResult(result)), nil, nil
}
