// Package record converts walker entries to index lines and back.
//
// Two layouts exist. Merged stores the full path as one field. Split stores the
// parent directory and the file name separated by a tab, which lets a search
// restrict itself to the file name. The layout is not recorded in the index
// file, so the same Layout must be used to build and to search.
package record

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lexandro/fastfind/walker"
)

// Delimiter separates the parent directory from the file name in Split records.
// A file name containing it produces an unparseable record.
const Delimiter = "\t"

var (
	// ErrMissingComponent is returned when a Split record cannot be produced because
	// the entry has no parent directory or no file name.
	ErrMissingComponent = errors.New("entry has no parent directory or file name")
	// ErrMalformedRecord is returned when a Split line does not hold exactly two fields.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnrepresentable is returned for a path that cannot be stored on a single
	// line: it contains a newline, or ends in a carriage return that line readers strip.
	ErrUnrepresentable = errors.New("path cannot be stored as one index line")
)

// Layout selects the on-disk record format.
type Layout int

const (
	Merged Layout = iota
	Split
)

func (l Layout) String() string {
	switch l {
	case Merged:
		return "merged"
	case Split:
		return "split"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout parses a layout name as used in flags and configuration.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "merged":
		return Merged, nil
	case "split":
		return Split, nil
	default:
		return Merged, fmt.Errorf("unknown layout %q (must be \"merged\" or \"split\")", name)
	}
}

// Format renders one entry as a single index line, without the trailing newline.
// A path the line format cannot hold yields ErrUnrepresentable.
func Format(entry walker.Entry, layout Layout) (string, error) {
	var line string
	switch layout {
	case Merged:
		line = entry.Path
	case Split:
		dir, name := entry.Dir, entry.Name
		if dir == "" || name == "" || name == "." || name == string(filepath.Separator) {
			return "", fmt.Errorf("%w: %q", ErrMissingComponent, entry.Path)
		}
		line = dir + Delimiter + name
	default:
		return "", fmt.Errorf("unsupported layout %s", layout)
	}

	if strings.ContainsRune(line, '\n') || strings.HasSuffix(line, "\r") {
		return "", fmt.Errorf("%w: %q", ErrUnrepresentable, entry.Path)
	}
	return line, nil
}

// Fields splits a Split line into its parent directory and file name.
func Fields(line string) (dir string, name string, err error) {
	parts := strings.Split(line, Delimiter)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: expected 2 fields, got %d", ErrMalformedRecord, len(parts))
	}
	return parts[0], parts[1], nil
}

// Display turns a stored line back into a path suitable for printing.
func Display(line string, layout Layout) (string, error) {
	if layout != Split {
		return line, nil
	}
	dir, name, err := Fields(line)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
