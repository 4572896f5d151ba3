package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/lexandro/codexray/remote"
)

// ErrNoScan is returned before the first successful scan.
var ErrNoScan = errors.New("no scan has been run yet")

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingFiles  int // admitted on disk but absent from the result
	StaleFiles    int // in the result but no longer on disk
	ModifiedFiles int // modified after the result was taken
	Rescanned     bool
	Duration      time.Duration
}

// Discrepancies is the total number of out-of-sync files.
func (r SyncResult) Discrepancies() int {
	return r.MissingFiles + r.StaleFiles + r.ModifiedFiles
}

// Verify compares the current local result with the files on disk and
// rescans when they differ. Remote targets are never verified.
func (w *Workspace) Verify(ctx context.Context) (SyncResult, error) {
	start := time.Now()
	var result SyncResult

	current, err := w.Current()
	if err != nil {
		return result, err
	}
	target := w.Target()
	if remote.IsRemote(target) {
		return result, nil
	}

	onDisk, err := w.scanner.Inventory(ctx, target)
	if err != nil {
		return result, err
	}

	known := make(map[string]struct{}, len(current.Records)+len(current.Skipped))
	for path := range current.Records {
		known[path] = struct{}{}
	}
	for _, skipped := range current.Skipped {
		known[skipped.RelativePath] = struct{}{}
	}

	for path, modTime := range onDisk {
		if _, ok := known[path]; !ok {
			result.MissingFiles++
			continue
		}
		if modTime.After(current.StartedAt) {
			result.ModifiedFiles++
		}
	}
	for path := range known {
		if _, ok := onDisk[path]; !ok {
			result.StaleFiles++
		}
	}

	if result.Discrepancies() > 0 {
		if _, err := w.Rescan(ctx); err != nil {
			return result, err
		}
		result.Rescanned = true
	}
	result.Duration = time.Since(start)
	return result, nil
}

// RunPeriodicSync verifies the current result at the given interval until ctx
// is done.
func (w *Workspace) RunPeriodicSync(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("periodic sync started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result, err := w.Verify(ctx)
			switch {
			case errors.Is(err, ErrNoScan):
			case err != nil:
				w.logger.Warn("sync verification failed", "error", err)
			case result.Discrepancies() > 0:
				w.logger.Info("sync verification complete",
					"missing", result.MissingFiles,
					"stale", result.StaleFiles,
					"modified", result.ModifiedFiles,
					"duration", result.Duration,
				)
			default:
				w.logger.Debug("sync verification complete, result is in sync", "duration", result.Duration)
			}
		}
	}
}
