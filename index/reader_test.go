package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_Reader_LinesInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.txt")
	os.WriteFile(path, []byte("/c\n/a\n/b\n"), 0644)

	reader, err := OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	var lines []string
	for line := range reader.Lines() {
		lines = append(lines, line)
	}
	if reader.Err() != nil {
		t.Fatalf("unexpected read error: %v", reader.Err())
	}
	expected := []string{"/c", "/a", "/b"}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d", len(expected), len(lines))
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: expected %s, got %s", i, expected[i], lines[i])
		}
	}
}

func Test_Reader_SkipsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.txt")
	os.WriteFile(path, []byte("/ok\n/bad\xff\xfe\n/also-ok\n"), 0644)

	reader, err := OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	count := 0
	for range reader.Lines() {
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 valid lines, got %d", count)
	}
	if reader.Invalid() != 1 {
		t.Errorf("expected 1 invalid line, got %d", reader.Invalid())
	}
}

func Test_Reader_MissingFile(t *testing.T) {
	_, err := OpenReader(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func readAll(t *testing.T, content string) ([]string, *Reader) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	reader, err := OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { reader.Close() })

	var lines []string
	for line := range reader.Lines() {
		lines = append(lines, line)
	}
	return lines, reader
}

func Test_Reader_SkipsOverlongLines(t *testing.T) {
	long := "/" + strings.Repeat("x", maxLineBytes+10)
	lines, reader := readAll(t, "/first\n"+long+"\n/last\n")

	if reader.Err() != nil {
		t.Fatalf("expected an over-long line not to fail the read, got %v", reader.Err())
	}
	if len(lines) != 2 || lines[0] != "/first" || lines[1] != "/last" {
		t.Errorf("expected the lines around the long one, got %d lines", len(lines))
	}
	if reader.Invalid() != 1 {
		t.Errorf("expected 1 invalid line, got %d", reader.Invalid())
	}
}

func Test_Reader_OverlongFinalLine(t *testing.T) {
	lines, reader := readAll(t, "/first\n/"+strings.Repeat("y", maxLineBytes+1))
	if reader.Err() != nil {
		t.Fatalf("unexpected read error: %v", reader.Err())
	}
	if len(lines) != 1 || reader.Invalid() != 1 {
		t.Errorf("expected 1 line and 1 invalid, got %d lines and %d invalid", len(lines), reader.Invalid())
	}
}

func Test_Reader_LineEndings(t *testing.T) {
	lines, reader := readAll(t, "/crlf\r\n\n/no-newline")
	if reader.Err() != nil {
		t.Fatalf("unexpected read error: %v", reader.Err())
	}
	expected := []string{"/crlf", "", "/no-newline"}
	if len(lines) != len(expected) {
		t.Fatalf("expected %q, got %q", expected, lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}
