package walker

import (
	"io/fs"
	"path/filepath"
)

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// KindFromMode derives the Kind from a file mode type.
func KindFromMode(mode fs.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// Entry is a single filesystem object reached during traversal.
type Entry struct {
	Path  string // Root-joined path
	Dir   string // Parent directory of Path
	Name  string // Final path element
	Kind  Kind
	Depth int // 1 for direct children of the root
}

// NewEntry builds an Entry for path, deriving its parent/name decomposition.
func NewEntry(path string, kind Kind, depth int) Entry {
	return Entry{
		Path:  path,
		Dir:   filepath.Dir(path),
		Name:  filepath.Base(path),
		Kind:  kind,
		Depth: depth,
	}
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Kind == KindDir }

// IsFile reports whether the entry is a regular file.
func (e Entry) IsFile() bool { return e.Kind == KindFile }
