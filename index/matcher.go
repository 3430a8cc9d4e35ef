package index

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/fastfind/record"
)

// Mode selects which part of a record a query is tested against.
type Mode int

const (
	// WholeLine tests the full stored line. For Split records the tab is part of the line.
	WholeLine Mode = iota
	// FileName tests only the file name field of Split records.
	FileName
)

func (m Mode) String() string {
	if m == FileName {
		return "filename"
	}
	return "wholeline"
}

// Query is a search string plus the options controlling how it is applied.
type Query struct {
	Text       string
	Mode       Mode
	Glob       bool // Treat Text as a doublestar glob instead of a literal substring
	IgnoreCase bool
}

// Matcher tests index lines against a query.
type Matcher struct {
	layout    record.Layout
	query     Query
	needle    string
	malformed int
}

// NewMatcher validates the query against the layout it will run on.
func NewMatcher(layout record.Layout, query Query) (*Matcher, error) {
	if query.Mode == FileName && layout != record.Split {
		return nil, ErrFileNameModeNeedsSplit
	}

	needle := query.Text
	if query.IgnoreCase {
		needle = strings.ToLower(needle)
	}
	if query.Glob {
		needle = filepath.ToSlash(needle)
		if !doublestar.ValidatePattern(needle) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, query.Text)
		}
	}

	return &Matcher{layout: layout, query: query, needle: needle}, nil
}

// Match reports whether line matches and, if so, returns its display path.
// Split lines that do not hold exactly two fields never match and are counted
// as malformed.
func (m *Matcher) Match(line string) (string, bool) {
	var field string
	switch {
	case m.layout == record.Split && m.query.Mode == FileName:
		_, name, err := record.Fields(line)
		if err != nil {
			m.malformed++
			return "", false
		}
		field = name
	case m.query.Glob:
		// Globs are written against paths, not against the raw tab-separated record.
		display, err := record.Display(line, m.layout)
		if err != nil {
			m.malformed++
			return "", false
		}
		field = display
	default:
		field = line
	}

	if !m.test(field) {
		return "", false
	}

	display, err := record.Display(line, m.layout)
	if err != nil {
		m.malformed++
		return "", false
	}
	return display, true
}

// Malformed returns the number of lines rejected as malformed so far.
func (m *Matcher) Malformed() int { return m.malformed }

func (m *Matcher) test(field string) bool {
	if m.query.IgnoreCase {
		field = strings.ToLower(field)
	}
	if m.query.Glob {
		matched, err := doublestar.Match(m.needle, filepath.ToSlash(field))
		return err == nil && matched
	}
	return strings.Contains(field, m.needle)
}
