// Package workspace owns the scan results served by the MCP tools: the
// current result, an LRU cache of earlier results per target, and the record
// and search indexes built from the current result.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lexandro/codexray/index"
	"github.com/lexandro/codexray/profile"
	"github.com/lexandro/codexray/remote"
	"github.com/lexandro/codexray/scanner"
)

// DefaultCacheSize is the number of scan results kept per process.
const DefaultCacheSize = 8

// Options configures a Workspace.
type Options struct {
	Scanner   *scanner.Scanner
	Cloner    *remote.Cloner
	CacheSize int
	Logger    *slog.Logger
}

// Workspace is safe for concurrent use.
type Workspace struct {
	mu        sync.RWMutex
	scanner   *scanner.Scanner
	cloner    *remote.Cloner
	cache     *lru.Cache[string, *profile.Result]
	records   *index.RecordIndex
	search    *index.SearchIndex
	current   *profile.Result
	target    string
	scanCount int
	startTime time.Time
	logger    *slog.Logger
}

// New creates an empty workspace.
func New(options Options) (*Workspace, error) {
	if options.CacheSize <= 0 {
		options.CacheSize = DefaultCacheSize
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if options.Scanner == nil {
		options.Scanner = scanner.New(scanner.Options{Logger: options.Logger})
	}
	if options.Cloner == nil {
		options.Cloner = remote.NewCloner(remote.Options{Logger: options.Logger})
	}

	cache, err := lru.New[string, *profile.Result](options.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	search, err := index.NewSearchIndex()
	if err != nil {
		return nil, err
	}
	return &Workspace{
		scanner:   options.Scanner,
		cloner:    options.Cloner,
		cache:     cache,
		records:   index.NewRecordIndex(),
		search:    search,
		startTime: time.Now(),
		logger:    options.Logger,
	}, nil
}

// Key normalizes a target: remote references stay as given, local paths
// become absolute.
func Key(target string) string {
	if remote.IsRemote(target) {
		return target
	}
	if abs, err := filepath.Abs(target); err == nil {
		return abs
	}
	return target
}

// Scan returns the result for target and makes it current. A cached result is
// reused unless force is set.
func (w *Workspace) Scan(ctx context.Context, target string, force bool) (*profile.Result, error) {
	key := Key(target)
	if !force {
		if cached, ok := w.cache.Get(key); ok {
			w.logger.Debug("using cached scan", "target", key, "scanID", cached.ScanID)
			if err := w.activate(key, cached); err != nil {
				return nil, err
			}
			return cached, nil
		}
	}

	result, err := w.scanTarget(ctx, key)
	if err != nil {
		return nil, err
	}
	w.cache.Add(key, result)

	w.mu.Lock()
	w.scanCount++
	w.mu.Unlock()

	if err := w.activate(key, result); err != nil {
		return nil, err
	}
	return result, nil
}

// scanTarget scans a local root in place or a remote reference through a
// temporary clone that is removed afterwards.
func (w *Workspace) scanTarget(ctx context.Context, key string) (*profile.Result, error) {
	if !remote.IsRemote(key) {
		return w.scanner.Scan(ctx, key)
	}

	var result *profile.Result
	err := w.cloner.With(ctx, key, func(checkout *remote.Checkout) error {
		var scanErr error
		result, scanErr = w.scanner.Scan(ctx, checkout.Dir)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	result.Root = key
	return result, nil
}

// Rescan forces a fresh scan of the current target.
func (w *Workspace) Rescan(ctx context.Context) (*profile.Result, error) {
	w.mu.RLock()
	target := w.target
	w.mu.RUnlock()
	if target == "" {
		return nil, ErrNoScan
	}
	return w.Scan(ctx, target, true)
}

// ApplyChanges re-profiles the changed files of the current local result and
// updates both indexes in place. Changes that cannot be applied per file fall
// back to a full rescan.
func (w *Workspace) ApplyChanges(ctx context.Context, changed []string) (*profile.Result, scanner.Delta, error) {
	w.mu.RLock()
	current, target := w.current, w.target
	w.mu.RUnlock()
	if current == nil {
		return nil, scanner.Delta{}, ErrNoScan
	}
	if remote.IsRemote(target) {
		return nil, scanner.Delta{}, fmt.Errorf("cannot apply file changes to remote target %s", target)
	}

	next, delta, err := w.scanner.Update(ctx, current, target, changed)
	if errors.Is(err, scanner.ErrFullScanRequired) {
		w.logger.Debug("falling back to full rescan", "reason", err)
		result, err := w.Rescan(ctx)
		return result, scanner.Delta{}, err
	}
	if err != nil {
		return nil, scanner.Delta{}, err
	}

	w.mu.Lock()
	if w.current != current {
		// another scan replaced the result while this update was running
		w.mu.Unlock()
		result, err := w.Rescan(ctx)
		return result, scanner.Delta{}, err
	}
	defer w.mu.Unlock()

	for _, path := range delta.Removed {
		w.records.Remove(path)
		if err := w.search.RemoveRecord(path); err != nil {
			return nil, delta, err
		}
	}
	for _, path := range delta.Updated {
		record := next.Records[path]
		w.records.Add(record)
		if err := w.search.IndexRecord(record); err != nil {
			return nil, delta, err
		}
	}
	w.current = next
	w.cache.Add(target, next)
	return next, delta, nil
}

// activate makes result current and rebuilds both indexes from it.
func (w *Workspace) activate(key string, result *profile.Result) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == result {
		return nil
	}
	if err := w.search.Replace(result.Records); err != nil {
		return fmt.Errorf("indexing scan result: %w", err)
	}
	w.records.Replace(result.Records)
	w.current = result
	w.target = key
	return nil
}

// Current returns the current result, or ErrNoScan.
func (w *Workspace) Current() (*profile.Result, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.current == nil {
		return nil, ErrNoScan
	}
	return w.current, nil
}

// Target returns the key of the current result.
func (w *Workspace) Target() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.target
}

// Records returns the path index over the current result.
func (w *Workspace) Records() *index.RecordIndex { return w.records }

// Search returns the full-text index over the current result.
func (w *Workspace) Search() *index.SearchIndex { return w.search }

// Status describes the workspace for the status tool.
type Status struct {
	Target        string
	ScanID        string
	Files         int
	Skipped       int
	Edges         int
	Totals        profile.Totals
	LastScanAt    time.Time
	LastDuration  time.Duration
	Scans         int
	CachedResults int
	IndexedDocs   uint64
	Uptime        time.Duration
}

// Status snapshots the workspace.
func (w *Workspace) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := Status{
		Target:        w.target,
		Scans:         w.scanCount,
		CachedResults: w.cache.Len(),
		IndexedDocs:   w.search.DocumentCount(),
		Uptime:        time.Since(w.startTime),
	}
	if w.current != nil {
		status.ScanID = w.current.ScanID
		status.Files = len(w.current.Records)
		status.Skipped = len(w.current.Skipped)
		status.Edges = len(w.current.Edges)
		status.Totals = w.current.Totals()
		status.LastScanAt = w.current.StartedAt
		status.LastDuration = w.current.Duration
	}
	return status
}

// Close releases the search index.
func (w *Workspace) Close() error {
	return w.search.Close()
}
