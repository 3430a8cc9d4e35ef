package tools

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lexandro/fastfind/record"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSearchHandler(t *testing.T, layout record.Layout, content string) *SearchHandler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return &SearchHandler{IndexPath: path, Layout: layout, Logger: testLogger()}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	return result.Content[0].(*mcp.TextContent).Text
}

func Test_SearchHandler_EmptyQuery(t *testing.T) {
	h := newTestSearchHandler(t, record.Merged, "")

	result, _, err := h.Handle(context.Background(), nil, SearchArgs{Query: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected IsError=true for empty query")
	}
	if text := resultText(t, result); !strings.Contains(text, "query parameter is required") {
		t.Errorf("expected error message about empty query, got: %s", text)
	}
}

func Test_SearchHandler_BasicSearch(t *testing.T) {
	h := newTestSearchHandler(t, record.Merged, "/src/main.go\n/src/util.go\n/README.md\n")

	result, _, err := h.Handle(context.Background(), nil, SearchArgs{Query: ".go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "/src/main.go") || !strings.Contains(text, "/src/util.go") {
		t.Errorf("expected both Go files in output, got:\n%s", text)
	}
	if strings.Contains(text, "README") {
		t.Errorf("expected README to be filtered out, got:\n%s", text)
	}
}

func Test_SearchHandler_FileNameNeedsSplit(t *testing.T) {
	h := newTestSearchHandler(t, record.Merged, "/a/b\n")

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "b", FileName: true})
	if !result.IsError {
		t.Fatal("expected an error for filename mode on a merged index")
	}
}

func Test_SearchHandler_FileNameOnSplit(t *testing.T) {
	h := newTestSearchHandler(t, record.Split, "/a/needle\tx.txt\n/a/b\tneedle.txt\n")

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "needle", FileName: true})
	text := resultText(t, result)
	if !strings.Contains(text, "Found 1 matches") || !strings.Contains(text, filepath.Join("/a/b", "needle.txt")) {
		t.Errorf("expected only /a/b/needle.txt, got:\n%s", text)
	}
}

func Test_SearchHandler_MaxResults(t *testing.T) {
	h := newTestSearchHandler(t, record.Merged, "/a/1\n/a/2\n/a/3\n")

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "/a/", MaxResults: 2})
	text := resultText(t, result)
	if !strings.Contains(text, "Found 2 matches") || !strings.Contains(text, "result limit reached") {
		t.Errorf("expected 2 limited matches, got:\n%s", text)
	}
}

func Test_SearchHandler_MissingIndex(t *testing.T) {
	h := &SearchHandler{IndexPath: filepath.Join(t.TempDir(), "missing.txt"), Logger: testLogger()}

	result, _, err := h.Handle(context.Background(), nil, SearchArgs{Query: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for a missing index")
	}
	if text := resultText(t, result); !strings.Contains(text, "fastfind_build") {
		t.Errorf("expected a hint to build the index, got: %s", text)
	}
}

func Test_SearchHandler_NoResults(t *testing.T) {
	h := newTestSearchHandler(t, record.Merged, "/a/b\n")

	result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "zzz"})
	if text := resultText(t, result); !strings.Contains(text, "No matches found") {
		t.Errorf("expected 'No matches found', got: %s", text)
	}
}

func Test_SearchHandler_WaitsForReadLock(t *testing.T) {
	h := newTestSearchHandler(t, record.Merged, "")
	var rw sync.RWMutex
	h.ReadLock = rw.RLocker()

	// A rebuild holds the write lock and has removed the index.
	rw.Lock()
	os.Remove(h.IndexPath)

	done := make(chan *mcp.CallToolResult, 1)
	go func() {
		result, _, _ := h.Handle(context.Background(), nil, SearchArgs{Query: "main"})
		done <- result
	}()

	select {
	case <-done:
		t.Fatal("expected search to wait for the rebuild to finish")
	case <-time.After(50 * time.Millisecond):
	}

	os.WriteFile(h.IndexPath, []byte("/src/main.go\n"), 0644)
	rw.Unlock()

	select {
	case result := <-done:
		if result.IsError {
			t.Fatalf("expected success after the rebuild, got: %s", resultText(t, result))
		}
		if text := resultText(t, result); !strings.Contains(text, "/src/main.go") {
			t.Errorf("expected the rebuilt index to be searched, got:\n%s", text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not resume after the rebuild")
	}
}
