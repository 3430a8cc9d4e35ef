package index

import (
	"errors"
	"fmt"
)

var (
	// ErrIO matches every *IOError via errors.Is.
	ErrIO = errors.New("index i/o error")
	// ErrIndexBusy is returned when an atomic build finds another build holding the lock.
	ErrIndexBusy = errors.New("index is locked by another build")
	// ErrFileNameModeNeedsSplit is returned when a file-name search targets a Merged index.
	ErrFileNameModeNeedsSplit = errors.New("file-name search requires a split layout index")
	// ErrInvalidPattern is returned for a glob query that cannot be parsed.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// IOError reports a failed operation on an index file or its directory.
type IOError struct {
	Op   string // remove, create, open, read, write, flush, close, rename, lock, stat, mkdir
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrIO) hold for every IOError.
func (e *IOError) Is(target error) bool { return target == ErrIO }
