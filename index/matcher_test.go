package index

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lexandro/fastfind/record"
)

func Test_Matcher_MergedSubstring(t *testing.T) {
	m, err := NewMatcher(record.Merged, Query{Text: "main"})
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := m.Match("/project/src/main.go"); !ok || got != "/project/src/main.go" {
		t.Errorf("expected match with unchanged path, got %q %v", got, ok)
	}
	if _, ok := m.Match("/project/src/Main.go"); ok {
		t.Error("expected substring match to be case-sensitive")
	}
}

func Test_Matcher_IgnoreCase(t *testing.T) {
	m, err := NewMatcher(record.Merged, Query{Text: "MAIN", IgnoreCase: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Match("/project/src/main.go"); !ok {
		t.Error("expected case-insensitive match")
	}
}

func Test_Matcher_SplitFileNameOnly(t *testing.T) {
	m, err := NewMatcher(record.Split, Query{Text: "needle", Mode: FileName})
	if err != nil {
		t.Fatal(err)
	}
	got, ok := m.Match("/a/b\tneedle.txt")
	if !ok {
		t.Fatal("expected file name match")
	}
	if got != filepath.Join("/a/b", "needle.txt") {
		t.Errorf("unexpected display path %s", got)
	}
	if _, ok := m.Match("/needle/b\tother.txt"); ok {
		t.Error("expected directory-only occurrence not to match in file-name mode")
	}
}

func Test_Matcher_SplitWholeLine(t *testing.T) {
	m, err := NewMatcher(record.Split, Query{Text: "needle"})
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"/a/b\tneedle.txt", "/needle/b\tother.txt"} {
		if _, ok := m.Match(line); !ok {
			t.Errorf("expected whole-line match for %q", line)
		}
	}

	// The delimiter is part of the line in whole-line mode.
	m, _ = NewMatcher(record.Split, Query{Text: "b\tn"})
	if _, ok := m.Match("/a/b\tneedle.txt"); !ok {
		t.Error("expected the tab to be matched verbatim")
	}
}

func Test_Matcher_MalformedSkipped(t *testing.T) {
	m, err := NewMatcher(record.Split, Query{Text: "x", Mode: FileName})
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{"/no/delimiter/x", "/a\tb\tx"} {
		if _, ok := m.Match(line); ok {
			t.Errorf("expected malformed line %q to be skipped", line)
		}
	}
	if m.Malformed() != 2 {
		t.Errorf("expected 2 malformed lines, got %d", m.Malformed())
	}
}

func Test_Matcher_FileNameModeNeedsSplit(t *testing.T) {
	_, err := NewMatcher(record.Merged, Query{Text: "x", Mode: FileName})
	if !errors.Is(err, ErrFileNameModeNeedsSplit) {
		t.Errorf("expected ErrFileNameModeNeedsSplit, got %v", err)
	}
}

func Test_Matcher_Glob(t *testing.T) {
	m, err := NewMatcher(record.Merged, Query{Text: "**/*.go", Glob: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Match("/project/src/main.go"); !ok {
		t.Error("expected glob match")
	}
	if _, ok := m.Match("/project/README.md"); ok {
		t.Error("expected README.md not to match **/*.go")
	}

	m, err = NewMatcher(record.Split, Query{Text: "*_test.go", Glob: true, Mode: FileName})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Match("/project/src\tmain_test.go"); !ok {
		t.Error("expected file-name glob match")
	}
}

func Test_Matcher_InvalidGlob(t *testing.T) {
	_, err := NewMatcher(record.Merged, Query{Text: "[invalid", Glob: true})
	if !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("expected ErrInvalidPattern, got %v", err)
	}
}
