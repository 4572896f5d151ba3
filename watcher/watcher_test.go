package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lexandro/codexray/ignore"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]DebouncedEvent
	signal  chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{signal: make(chan struct{}, 16)}
}

func (r *batchRecorder) record(_ context.Context, batch []DebouncedEvent) {
	r.mu.Lock()
	r.batches = append(r.batches, batch)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *batchRecorder) wait(t *testing.T) []DebouncedEvent {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func startWatcher(t *testing.T, root string, checker IgnoreChecker) *batchRecorder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := NewWatcher(root, checker, 30*time.Millisecond, logger)
	if err != nil {
		t.Fatalf("creating watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	recorder := newBatchRecorder()
	go w.Run(ctx, recorder.record)
	t.Cleanup(func() {
		cancel()
		w.Close()
	})
	return recorder
}

func Test_Watcher_EmitsBatchForAdmittedFile(t *testing.T) {
	root := t.TempDir()
	recorder := startWatcher(t, root, ignore.NewMatcher(ignore.MatcherOptions{RootDir: root}))

	os.WriteFile(filepath.Join(root, "app.ts"), []byte("x\n"), 0644)

	batch := recorder.wait(t)
	found := false
	for _, event := range batch {
		if filepath.Base(event.Path) == "app.ts" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected app.ts in batch, got %v", batch)
	}
}

func Test_Watcher_IgnoresNonAdmittedFiles(t *testing.T) {
	root := t.TempDir()
	recorder := startWatcher(t, root, ignore.NewMatcher(ignore.MatcherOptions{RootDir: root}))

	os.WriteFile(filepath.Join(root, "tool.exe"), []byte("MZ"), 0644)
	os.WriteFile(filepath.Join(root, "main.py"), []byte("x\n"), 0644)

	batch := recorder.wait(t)
	for _, event := range batch {
		if filepath.Base(event.Path) == "tool.exe" {
			t.Errorf("expected tool.exe to be ignored, got %v", batch)
		}
	}
}

func Test_Watcher_GitignoreChangeReloadsMatcher(t *testing.T) {
	root := t.TempDir()
	matcher := ignore.NewMatcher(ignore.MatcherOptions{RootDir: root, RespectGitignore: true})
	recorder := startWatcher(t, root, matcher)

	os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated.ts\n"), 0644)
	recorder.wait(t)

	if matcher.Admit(filepath.Join(root, "generated.ts")) {
		t.Error("expected matcher to pick up the new .gitignore")
	}
}
