package index

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"
	"os"
	"unicode/utf8"
)

// maxLineBytes bounds a single record. Longer lines are skipped as invalid.
const maxLineBytes = 1024 * 1024

// Reader streams the lines of an index file in file order.
type Reader struct {
	path    string
	file    *os.File
	buf     *bufio.Reader
	err     error
	invalid int
}

// OpenReader opens an index file for reading.
func OpenReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	return &Reader{path: path, file: file, buf: bufio.NewReaderSize(file, maxLineBytes)}, nil
}

// Lines returns the remaining lines without their trailing newline or carriage
// return. Lines that are not valid UTF-8 or exceed maxLineBytes are skipped. The
// sequence can be consumed once; check Err after it ends.
func (r *Reader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			line, err := r.buf.ReadSlice('\n')
			tooLong := false
			for errors.Is(err, bufio.ErrBufferFull) {
				tooLong = true
				_, err = r.buf.ReadSlice('\n')
			}
			if err != nil && !errors.Is(err, io.EOF) {
				if r.err == nil {
					r.err = &IOError{Op: "read", Path: r.path, Err: err}
				}
				return
			}

			switch {
			case tooLong:
				r.invalid++
			case len(line) == 0:
			default:
				line = bytes.TrimSuffix(line, []byte("\n"))
				line = bytes.TrimSuffix(line, []byte("\r"))
				if !utf8.Valid(line) {
					r.invalid++
				} else if !yield(string(line)) {
					return
				}
			}

			if err != nil {
				return
			}
		}
	}
}

// Err returns the first read error encountered by Lines, if any.
func (r *Reader) Err() error { return r.err }

// Invalid returns the number of lines skipped for being invalid UTF-8 or too long.
func (r *Reader) Invalid() int { return r.invalid }

// Close releases the underlying file.
func (r *Reader) Close() error {
	if err := r.file.Close(); err != nil {
		return &IOError{Op: "close", Path: r.path, Err: err}
	}
	return nil
}
