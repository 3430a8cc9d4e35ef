// Package index builds flat path index files and scans them for matches.
//
// An index file holds one record per line in traversal order. Building replaces
// whatever was at the destination; searching is a linear scan over the lines.
package index

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/lexandro/fastfind/record"
	"github.com/lexandro/fastfind/walker"
)

// BuildOptions configures a single index build.
type BuildOptions struct {
	Root        string        // Directory to index
	Destination string        // Index file to (re)create
	Layout      record.Layout // Record format
	Walk        walker.Options
	// Atomic writes into a temporary file under a <Destination>.lock file lock and
	// renames it into place on success. Without it the destination is deleted and
	// rewritten in place, so an interrupted build leaves a truncated file behind.
	Atomic bool
	Logger *slog.Logger
}

// BuildResult summarizes a completed build.
type BuildResult struct {
	Destination string
	Records     int
	Skipped     int
	Elapsed     time.Duration
}

// Build walks opts.Root and writes one record per entry to opts.Destination.
func Build(ctx context.Context, opts BuildOptions) (BuildResult, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	result := BuildResult{Destination: opts.Destination}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", walker.ErrPathNotFound, opts.Root, err)
	}

	walkOpts := opts.Walk
	onSkip := walkOpts.OnSkip
	skip := func(skipErr *walker.PartialTraversalError) {
		result.Skipped++
		logger.Debug("skipped entry", "path", skipErr.Path, "error", skipErr.Err)
		if onSkip != nil {
			onSkip(skipErr)
		}
	}
	walkOpts.OnSkip = skip

	entries, err := walker.Walk(root, walkOpts)
	if err != nil {
		return result, err
	}

	if opts.Atomic {
		result.Records, err = buildAtomic(ctx, opts.Destination, entries, opts.Layout, skip)
	} else {
		result.Records, err = buildInPlace(ctx, opts.Destination, entries, opts.Layout, skip)
	}
	result.Elapsed = time.Since(start)
	if err != nil {
		logger.Error("index build failed",
			"root", root,
			"destination", opts.Destination,
			"records", result.Records,
			"error", err,
		)
		return result, err
	}

	logger.Info("index build complete",
		"root", root,
		"destination", opts.Destination,
		"layout", opts.Layout,
		"records", result.Records,
		"skipped", result.Skipped,
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// buildInPlace deletes the destination and writes the new index directly into it.
func buildInPlace(ctx context.Context, dest string, entries iter.Seq[walker.Entry], layout record.Layout, skip skipFunc) (int, error) {
	if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, &IOError{Op: "remove", Path: dest, Err: err}
	}

	file, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, &IOError{Op: "create", Path: dest, Err: err}
	}

	count, err := writeRecords(ctx, file, dest, entries, layout, skip)
	closeErr := file.Close()
	if err != nil {
		return count, err
	}
	if closeErr != nil {
		return count, &IOError{Op: "close", Path: dest, Err: closeErr}
	}
	return count, nil
}

// buildAtomic writes the index next to the destination and renames it into place.
// The previous index stays intact until the rename.
func buildAtomic(ctx context.Context, dest string, entries iter.Seq[walker.Entry], layout record.Layout, skip skipFunc) (int, error) {
	lockPath := dest + ".lock"
	lock := flock.New(lockPath)
	acquired, err := lock.TryLock()
	if err != nil {
		return 0, &IOError{Op: "lock", Path: lockPath, Err: err}
	}
	if !acquired {
		return 0, fmt.Errorf("%w: %s", ErrIndexBusy, lockPath)
	}
	defer lock.Unlock()

	dir := filepath.Dir(dest)
	tempFile, err := os.CreateTemp(dir, ".fastfind-*.tmp")
	if err != nil {
		return 0, &IOError{Op: "create", Path: dir, Err: err}
	}
	tempPath := tempFile.Name()

	count, err := writeRecords(ctx, tempFile, tempPath, entries, layout, skip)
	closeErr := tempFile.Close()
	if err == nil && closeErr != nil {
		err = &IOError{Op: "close", Path: tempPath, Err: closeErr}
	}
	if err == nil {
		if renameErr := os.Rename(tempPath, dest); renameErr != nil {
			err = &IOError{Op: "rename", Path: dest, Err: renameErr}
		}
	}
	if err != nil {
		os.Remove(tempPath)
		return count, err
	}
	return count, nil
}

// skipFunc receives entries left out of the index without failing the build.
type skipFunc func(*walker.PartialTraversalError)

// writeRecords formats every entry and writes it as one line. Entries whose path
// cannot be stored on one line are passed to skip; any other failure stops the
// build and lines already flushed stay in w.
func writeRecords(ctx context.Context, w io.Writer, path string, entries iter.Seq[walker.Entry], layout record.Layout, skip skipFunc) (int, error) {
	buffered := bufio.NewWriterSize(w, 64*1024)
	count := 0

	for entry := range entries {
		if err := ctx.Err(); err != nil {
			return count, fmt.Errorf("build cancelled: %w", err)
		}
		line, err := record.Format(entry, layout)
		if errors.Is(err, record.ErrUnrepresentable) {
			if skip != nil {
				skip(&walker.PartialTraversalError{Path: entry.Path, Err: err})
			}
			continue
		}
		if err != nil {
			return count, fmt.Errorf("formatting %s: %w", entry.Path, err)
		}
		if _, err := buffered.WriteString(line); err != nil {
			return count, &IOError{Op: "write", Path: path, Err: err}
		}
		if err := buffered.WriteByte('\n'); err != nil {
			return count, &IOError{Op: "write", Path: path, Err: err}
		}
		count++
	}

	if err := buffered.Flush(); err != nil {
		return count, &IOError{Op: "flush", Path: path, Err: err}
	}
	return count, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
