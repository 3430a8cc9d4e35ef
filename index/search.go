package index

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/lexandro/fastfind/record"
)

// SearchOptions configures a scan over an index file.
type SearchOptions struct {
	IndexPath  string
	Layout     record.Layout // Must match the layout the index was built with
	Query      Query
	MaxResults int // 0 means unlimited
	Logger     *slog.Logger
}

// SearchResult summarizes a completed scan.
type SearchResult struct {
	Scanned   int
	Matched   int
	Malformed int // Split lines skipped for not holding two fields
	Invalid   int // Lines skipped for not being valid UTF-8
	Elapsed   time.Duration
}

// Filter yields the display path of every line in lines that m accepts, in order.
func Filter(lines iter.Seq[string], m *Matcher) iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range lines {
			if display, ok := m.Match(line); ok {
				if !yield(display) {
					return
				}
			}
		}
	}
}

// Search scans the index and calls emit for every matching path in index order.
// An error returned by emit aborts the search and is returned unchanged.
func Search(ctx context.Context, opts SearchOptions, emit func(path string) error) (SearchResult, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	var result SearchResult

	matcher, err := NewMatcher(opts.Layout, opts.Query)
	if err != nil {
		return result, err
	}

	reader, err := OpenReader(opts.IndexPath)
	if err != nil {
		return result, err
	}
	defer reader.Close()

	var cancelled error
	lines := func(yield func(string) bool) {
		for line := range reader.Lines() {
			if cancelled = ctx.Err(); cancelled != nil {
				return
			}
			result.Scanned++
			if !yield(line) {
				return
			}
		}
	}

	for path := range Filter(lines, matcher) {
		result.Matched++
		if err = emit(path); err != nil {
			break
		}
		if opts.MaxResults > 0 && result.Matched >= opts.MaxResults {
			break
		}
	}
	if err == nil && cancelled != nil {
		err = fmt.Errorf("search cancelled: %w", cancelled)
	}
	if err == nil {
		err = reader.Err()
	}

	result.Malformed = matcher.Malformed()
	result.Invalid = reader.Invalid()
	result.Elapsed = time.Since(start)

	if err != nil {
		return result, err
	}
	if result.Malformed > 0 || result.Invalid > 0 {
		logger.Debug("skipped unreadable records",
			"index", opts.IndexPath,
			"malformed", result.Malformed,
			"invalid", result.Invalid,
		)
	}
	logger.Info("search complete",
		"index", opts.IndexPath,
		"query", opts.Query.Text,
		"mode", opts.Query.Mode,
		"scanned", result.Scanned,
		"matched", result.Matched,
		"elapsed", result.Elapsed,
	)
	return result, nil
}
