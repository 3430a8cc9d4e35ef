package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/fastfind/index"
)

// FormatSearchResults formats matched paths as human-readable text.
// limited reports whether the scan stopped at the result limit.
func FormatSearchResults(paths []string, result index.SearchResult, limited bool) string {
	if len(paths) == 0 {
		return fmt.Sprintf("No matches found (%d records scanned).", result.Scanned)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d matches in %d records", len(paths), result.Scanned))
	if limited {
		builder.WriteString(" (result limit reached)")
	}
	builder.WriteString(":\n\n")

	for _, path := range paths {
		builder.WriteString(path)
		builder.WriteString("\n")
	}

	if skipped := result.Malformed + result.Invalid; skipped > 0 {
		builder.WriteString(fmt.Sprintf("\n%d unreadable records skipped.\n", skipped))
	}
	return builder.String()
}

// FormatBuildResult formats a completed build as a one-line summary.
func FormatBuildResult(result index.BuildResult) string {
	output := fmt.Sprintf("indexed %d entries into %s in %s",
		result.Records, result.Destination, result.Elapsed.Round(time.Millisecond))
	if result.Skipped > 0 {
		output += fmt.Sprintf(" (%d unreadable entries skipped)", result.Skipped)
	}
	return output
}

// FormatStats formats index file statistics.
func FormatStats(stats index.Stats) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Index file: %s\n", stats.Path))
	builder.WriteString(fmt.Sprintf("Layout: %s\n", stats.Layout))
	builder.WriteString(fmt.Sprintf("Size: %s\n", formatFileSize(stats.SizeBytes)))
	builder.WriteString(fmt.Sprintf("Last built: %s (%s ago)\n",
		stats.ModTime.Format(time.RFC3339), formatDuration(time.Since(stats.ModTime))))
	builder.WriteString(fmt.Sprintf("Records: %d\n", stats.Records))
	if stats.Malformed > 0 {
		builder.WriteString(fmt.Sprintf("Malformed records: %d\n", stats.Malformed))
	}
	if stats.Invalid > 0 {
		builder.WriteString(fmt.Sprintf("Invalid UTF-8 lines: %d\n", stats.Invalid))
	}
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
