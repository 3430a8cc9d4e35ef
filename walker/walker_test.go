package walker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func collect(t *testing.T, root string, opts Options) []Entry {
	t.Helper()
	seq, err := Walk(root, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var entries []Entry
	for entry := range seq {
		entries = append(entries, entry)
	}
	return entries
}

func paths(entries []Entry) map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	return m
}

func Test_Walk_EmptyDirectory(t *testing.T) {
	entries := collect(t, t.TempDir(), Options{})
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}

func Test_Walk_ExcludesRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt")

	entries := collect(t, root, Options{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Path == root {
		t.Error("root must not be yielded")
	}
	if entries[0].Depth != 1 {
		t.Errorf("expected depth 1, got %d", entries[0].Depth)
	}
}

func Test_Walk_DepthFirst(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a/b/c.txt", "d.txt")

	entries := collect(t, root, Options{})
	got := paths(entries)
	for _, rel := range []string{"a", "a/b", "a/b/c.txt", "d.txt"} {
		if _, ok := got[filepath.Join(root, filepath.FromSlash(rel))]; !ok {
			t.Errorf("expected %s in walk output", rel)
		}
	}

	// A directory is always yielded before its descendants.
	position := make(map[string]int)
	for i, e := range entries {
		position[e.Path] = i
	}
	a := position[filepath.Join(root, "a")]
	ab := position[filepath.Join(root, "a", "b")]
	abc := position[filepath.Join(root, "a", "b", "c.txt")]
	if !(a < ab && ab < abc) {
		t.Errorf("expected a < a/b < a/b/c.txt, got %d %d %d", a, ab, abc)
	}
	if d := got[filepath.Join(root, "a", "b", "c.txt")].Depth; d != 3 {
		t.Errorf("expected depth 3, got %d", d)
	}
}

func Test_Walk_SiblingsInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	// Created out of order so listing order and lexical order differ on most filesystems.
	writeTree(t, root, "c.txt", "a/z.txt", "b.txt", "a/m.txt")

	var rel []string
	for _, e := range collect(t, root, Options{}) {
		r, _ := filepath.Rel(root, e.Path)
		rel = append(rel, filepath.ToSlash(r))
	}
	expected := []string{"a", "a/m.txt", "a/z.txt", "b.txt", "c.txt"}
	if len(rel) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, rel)
	}
	for i := range expected {
		if rel[i] != expected[i] {
			t.Errorf("position %d: expected %q, got %q", i, expected[i], rel[i])
		}
	}
}

func Test_Walk_FilesOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "dir/one.txt", "two.txt")

	entries := collect(t, root, Options{FilesOnly: true})
	if len(entries) != 2 {
		t.Fatalf("expected 2 files, got %d", len(entries))
	}
	for _, e := range entries {
		if !e.IsFile() {
			t.Errorf("expected only files, got %s (%s)", e.Path, e.Kind)
		}
	}
}

func Test_Walk_EntryDecomposition(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "sub/name.go")

	for _, e := range collect(t, root, Options{FilesOnly: true}) {
		if e.Dir != filepath.Join(root, "sub") {
			t.Errorf("expected dir %s, got %s", filepath.Join(root, "sub"), e.Dir)
		}
		if e.Name != "name.go" {
			t.Errorf("expected name name.go, got %s", e.Name)
		}
	}
}

func Test_Walk_MissingRoot(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "nope"), Options{})
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func Test_Walk_RootIsFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "file.txt")

	_, err := Walk(filepath.Join(root, "file.txt"), Options{})
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("expected ErrPathNotFound, got %v", err)
	}
}

func Test_Walk_SkipsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	writeTree(t, root, "ok/a.txt", "locked/hidden.txt", "b.txt")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	var skipped []string
	entries := collect(t, root, Options{OnSkip: func(err *PartialTraversalError) {
		skipped = append(skipped, err.Path)
	}})

	got := paths(entries)
	if _, ok := got[filepath.Join(locked, "hidden.txt")]; ok {
		t.Error("expected contents of unreadable directory to be skipped")
	}
	for _, rel := range []string{"ok", "ok/a.txt", "locked", "b.txt"} {
		if _, ok := got[filepath.Join(root, filepath.FromSlash(rel))]; !ok {
			t.Errorf("expected %s to survive the walk", rel)
		}
	}
	if len(skipped) != 1 || skipped[0] != locked {
		t.Errorf("expected one skip for %s, got %v", locked, skipped)
	}
}

func Test_Walk_SkipsDanglingSymlink(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "real.txt")
	if err := os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	var skips int
	entries := collect(t, root, Options{OnSkip: func(*PartialTraversalError) { skips++ }})
	if len(entries) != 1 {
		t.Errorf("expected only real.txt, got %d entries", len(entries))
	}
	if skips != 1 {
		t.Errorf("expected 1 skip, got %d", skips)
	}
}

type nameIgnorer struct{ name string }

func (n nameIgnorer) ShouldIgnoreDir(p string) bool { return filepath.Base(p) == n.name }
func (n nameIgnorer) ShouldIgnore(p string) bool    { return filepath.Base(p) == n.name }

func Test_Walk_IgnoreChecker(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "node_modules/x.js", "main.js")

	entries := collect(t, root, Options{Ignore: nameIgnorer{"node_modules"}})
	if len(entries) != 1 || entries[0].Name != "main.js" {
		t.Errorf("expected only main.js, got %v", entries)
	}
}

func Test_Walk_StopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.txt", "b.txt", "c.txt")

	seq, err := Walk(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for range seq {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected to stop after 1 entry, got %d", count)
	}
}
