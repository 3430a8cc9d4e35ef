package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lexandro/fastfind/config"
	"github.com/lexandro/fastfind/index"
)

func newSearchCommand(g *globalOptions) *cobra.Command {
	var idx indexFlags
	var colorMode string
	var query index.Query
	var fileName bool
	var maxResults int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Print every indexed path containing the query",
		Long: `Scan the index and print the path of every record containing the query,
in index order. Matching is case-sensitive unless -i is given.

By default the query is tested against the whole stored record. With
--filename only the file name is tested, which needs a split layout index.
With --glob the query is a doublestar pattern matched against the full path.

Examples:
  fastfind search main.go
  fastfind search --filename --layout split test
  fastfind search --glob '**/cmd/**/*.go'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags config.Flags
			idx.apply(cmd, &flags)
			flags.Color = changed(cmd, "color", &colorMode)
			cfg, logger, err := g.load(cmd, flags)
			if err != nil {
				return err
			}

			query.Text = args[0]
			if fileName {
				query.Mode = index.FileName
			}
			opts := index.SearchOptions{
				IndexPath:  cfg.IndexPath,
				Layout:     cfg.RecordLayout(),
				Query:      query,
				MaxResults: maxResults,
				Logger:     logger,
			}
			out := cmd.OutOrStdout()
			return runSearch(cmd.Context(), opts, newHighlighter(cfg.Color, out, query), out, logger)
		},
	}

	idx.register(cmd)
	cmd.Flags().BoolVar(&fileName, "filename", false, "Match the file name only (split layout)")
	cmd.Flags().BoolVar(&query.Glob, "glob", false, "Treat the query as a doublestar glob against the full path")
	cmd.Flags().BoolVarP(&query.IgnoreCase, "ignore-case", "i", false, "Match case-insensitively")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "Stop after this many matches (0 = unlimited)")
	cmd.Flags().StringVar(&colorMode, "color", "", "Highlight matches: auto|always|never (default from config)")
	return cmd
}

// runSearch streams matching paths to out, one per line.
func runSearch(ctx context.Context, opts index.SearchOptions, hl *highlighter, out io.Writer, logger *slog.Logger) error {
	buffered := bufio.NewWriter(out)
	result, err := index.Search(ctx, opts, func(path string) error {
		_, err := fmt.Fprintln(buffered, hl.highlight(path))
		return err
	})
	if flushErr := buffered.Flush(); err == nil {
		err = flushErr
	}
	if err != nil {
		return err
	}
	logger.Debug("search finished", "matched", result.Matched, "scanned", result.Scanned)
	return nil
}

// highlighter colors the query inside printed paths.
type highlighter struct {
	style  *color.Color
	needle string
	last   bool // Highlight the last occurrence, where the file name is
	fold   bool
}

// newHighlighter returns a highlighter for query. It is a no-op for glob queries,
// for mode "never" and, in mode "auto", when out is not a terminal.
func newHighlighter(mode string, out io.Writer, query index.Query) *highlighter {
	hl := &highlighter{
		style:  color.New(color.FgRed, color.Bold),
		needle: query.Text,
		last:   query.Mode == index.FileName,
		fold:   query.IgnoreCase,
	}
	if query.Glob || query.Text == "" || !colorEnabled(mode, out) {
		hl.needle = ""
		return hl
	}
	hl.style.EnableColor()
	return hl
}

func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (h *highlighter) highlight(path string) string {
	if h.needle == "" {
		return path
	}

	haystack, needle := path, h.needle
	if h.fold {
		haystack, needle = strings.ToLower(haystack), strings.ToLower(needle)
	}
	var at int
	if h.last {
		at = strings.LastIndex(haystack, needle)
	} else {
		at = strings.Index(haystack, needle)
	}
	// Whole-line queries spanning the split tab do not appear in the display path.
	if at < 0 || len(haystack) != len(path) {
		return path
	}
	end := at + len(needle)
	return path[:at] + h.style.Sprint(path[at:end]) + path[end:]
}
