package watcher

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_Watcher_EmitsBatchOnChange(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "sub"), 0755)

	w, err := NewWatcher(root, Options{Debounce: testInterval, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()
	go w.Start()

	target := filepath.Join(root, "sub", "new.txt")
	os.WriteFile(target, []byte("x"), 0644)

	select {
	case batch := <-w.Batches():
		found := false
		for _, p := range batch.Paths {
			if p == target {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s in batch, got %v", target, batch.Paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}
}

func Test_Watcher_DropsExcludedPaths(t *testing.T) {
	root := t.TempDir()
	indexPath := filepath.Join(root, "index.txt")

	w, err := NewWatcher(root, Options{
		Debounce: testInterval,
		Exclude:  []string{indexPath, ".fastfind-*.tmp"},
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()
	go w.Start()

	os.WriteFile(indexPath, []byte("/x\n"), 0644)
	os.WriteFile(filepath.Join(root, ".fastfind-123.tmp"), []byte("/x\n"), 0644)

	select {
	case batch := <-w.Batches():
		t.Errorf("expected excluded writes to be dropped, got %v", batch.Paths)
	case <-time.After(5 * testInterval):
	}
}
