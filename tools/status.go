package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/fastfind/index"
	"github.com/lexandro/fastfind/record"
)

// StatusArgs defines the input parameters for the fastfind_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	IndexPath string
	Layout    record.Layout
	RootDir   string
	StartTime time.Time
	Logger    *slog.Logger
	// ReadLock, if set, is held while the index file is read so a concurrent
	// rebuild cannot replace it mid-scan.
	ReadLock sync.Locker
}

// Handle processes a fastfind_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	uptime := time.Since(h.StartTime)

	var builder strings.Builder
	builder.WriteString("=== fastfind Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", h.RootDir))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))

	if h.ReadLock != nil {
		h.ReadLock.Lock()
		defer h.ReadLock.Unlock()
	}
	stats, err := index.ReadStats(h.IndexPath, h.Layout)
	if err != nil {
		h.Logger.Warn("fastfind_status could not read index", "index", h.IndexPath, "error", err)
		builder.WriteString(fmt.Sprintf("Index file: %s (not readable: %v)\n", h.IndexPath, err))
		return textResult(builder.String()), nil, nil
	}

	h.Logger.Info("fastfind_status",
		"index", stats.Path,
		"records", stats.Records,
		"size", stats.SizeBytes,
		"uptime", uptime,
	)
	builder.WriteString(FormatStats(stats))
	return textResult(builder.String()), nil, nil
}
