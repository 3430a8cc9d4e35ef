// Package walker enumerates the entries below a root directory, depth-first
// with siblings in lexical order, without leaving the root's filesystem.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathNotFound is returned when the walk root does not exist or is not a directory.
var ErrPathNotFound = errors.New("path not found")

// PartialTraversalError describes one entry that could not be read during a walk.
// The walk skips the entry and keeps going.
type PartialTraversalError struct {
	Path string
	Err  error
}

func (e *PartialTraversalError) Error() string {
	return fmt.Sprintf("skipped %s: %v", e.Path, e.Err)
}

func (e *PartialTraversalError) Unwrap() error { return e.Err }

// IgnoreChecker prunes paths from a walk.
type IgnoreChecker interface {
	ShouldIgnoreDir(absolutePath string) bool
	ShouldIgnore(absolutePath string) bool
}

// Options configures a walk.
type Options struct {
	// FilesOnly restricts the output to regular files.
	FilesOnly bool
	// CrossFilesystems allows descending into directories mounted from another device.
	CrossFilesystems bool
	// Ignore, if set, prunes directories and files from the output.
	Ignore IgnoreChecker
	// OnSkip, if set, is called for every entry skipped because it could not be read.
	OnSkip func(err *PartialTraversalError)
}

// Walk validates root and returns a lazy sequence of every entry below it.
// The root itself is not part of the sequence. Each range over the sequence
// performs a fresh traversal.
func Walk(root string, opts Options) (iter.Seq[Entry], error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPathNotFound, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, root)
	}

	root = filepath.Clean(root)
	// WalkDir does not follow a symlinked root, so resolve it up front.
	if linfo, err := os.Lstat(root); err == nil && linfo.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving %s: %w", ErrPathNotFound, root, err)
		}
		root = resolved
	}

	rootDevice, err := deviceOf(root, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPathNotFound, root, err)
	}

	w := &walk{root: root, rootDevice: rootDevice, opts: opts}
	return w.entries, nil
}

type walk struct {
	root       string
	rootDevice uint64
	opts       Options
}

func (w *walk) entries(yield func(Entry) bool) {
	filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Either the entry could not be stat'ed or a directory could not be listed.
			// In both cases whatever was reachable has already been yielded.
			w.skip(path, err)
			if d == nil && path == w.root {
				return filepath.SkipAll
			}
			return nil
		}
		if path == w.root {
			return nil
		}

		depth := w.depth(path)

		if d.IsDir() {
			if w.opts.Ignore != nil && w.opts.Ignore.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			descend := true
			if !w.opts.CrossFilesystems {
				device, err := deviceOf(path, false)
				if err != nil {
					w.skip(path, err)
					return filepath.SkipDir
				}
				descend = device == w.rootDevice
			}
			if !w.opts.FilesOnly && !yield(NewEntry(path, KindDir, depth)) {
				return filepath.SkipAll
			}
			if !descend {
				return filepath.SkipDir
			}
			return nil
		}

		if w.opts.Ignore != nil && w.opts.Ignore.ShouldIgnore(path) {
			return nil
		}

		kind := KindFromMode(d.Type())
		if kind == KindSymlink {
			// Dangling links are unreadable entries.
			if _, err := os.Stat(path); err != nil {
				w.skip(path, err)
				return nil
			}
		}
		if w.opts.FilesOnly && kind != KindFile {
			return nil
		}
		if !yield(NewEntry(path, kind, depth)) {
			return filepath.SkipAll
		}
		return nil
	})
}

func (w *walk) depth(path string) int {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return 1
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func (w *walk) skip(path string, err error) {
	if w.opts.OnSkip != nil {
		w.opts.OnSkip(&PartialTraversalError{Path: path, Err: err})
	}
}
