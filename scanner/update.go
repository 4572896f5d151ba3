package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexandro/codexray/graph"
	"github.com/lexandro/codexray/ignore"
	"github.com/lexandro/codexray/profile"
)

// ErrFullScanRequired is returned by Update when a change cannot be applied
// file by file: a directory was created or removed, or .gitignore changed.
var ErrFullScanRequired = errors.New("change requires a full scan")

// Delta lists the relative paths an Update touched.
type Delta struct {
	Updated []string // re-profiled, now present in Records
	Removed []string // gone from Records
}

// Empty reports whether the update changed nothing.
func (d Delta) Empty() bool {
	return len(d.Updated) == 0 && len(d.Removed) == 0
}

// Update re-profiles only the changed files of prev and returns a new result
// with the dependency graph rebuilt over the merged record set. prev is not
// modified. changed holds absolute paths below rootDir.
func (s *Scanner) Update(ctx context.Context, prev *profile.Result, rootDir string, changed []string) (*profile.Result, Delta, error) {
	start := time.Now()
	var delta Delta

	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, delta, fmt.Errorf("%w: %s: %v", ErrRootNotFound, rootDir, err)
	}
	ignoreOptions := s.ignoreOptions
	ignoreOptions.RootDir = rootDir
	matcher := ignore.NewMatcher(ignoreOptions)

	records := make(map[string]*profile.FileRecord, len(prev.Records))
	for path, rec := range prev.Records {
		records[path] = rec
	}
	skipped := make(map[string]profile.Skip, len(prev.Skipped))
	for _, sk := range prev.Skipped {
		skipped[sk.RelativePath] = sk
	}

	seen := make(map[string]struct{}, len(changed))
	for _, absPath := range changed {
		if err := ctx.Err(); err != nil {
			return nil, delta, err
		}
		relPath, err := filepath.Rel(rootDir, absPath)
		if err != nil || relPath == "." || strings.HasPrefix(relPath, "..") {
			continue
		}
		relPath = filepath.ToSlash(relPath)
		if _, dup := seen[relPath]; dup {
			continue
		}
		seen[relPath] = struct{}{}

		if filepath.Base(relPath) == ".gitignore" {
			return nil, delta, fmt.Errorf("%w: %s changed", ErrFullScanRequired, relPath)
		}

		info, statErr := os.Stat(absPath)
		if statErr == nil && info.IsDir() {
			return nil, delta, fmt.Errorf("%w: directory %s changed", ErrFullScanRequired, relPath)
		}
		if statErr != nil && hasRecordsBelow(records, relPath) {
			return nil, delta, fmt.Errorf("%w: directory %s removed", ErrFullScanRequired, relPath)
		}

		_, wasRecorded := records[relPath]
		delete(records, relPath)
		delete(skipped, relPath)

		if statErr != nil || matcher.ShouldIgnore(absPath) {
			if wasRecorded {
				delta.Removed = append(delta.Removed, relPath)
			}
			continue
		}

		outcome := s.Profile(absPath, relPath)
		if outcome.Skipped() {
			s.logger.Debug("skipped file", "path", relPath, "reason", outcome.Skip.Reason)
			skipped[relPath] = *outcome.Skip
			if wasRecorded {
				delta.Removed = append(delta.Removed, relPath)
			}
			continue
		}
		records[relPath] = outcome.Record
		delta.Updated = append(delta.Updated, relPath)
	}

	skippedList := make([]profile.Skip, 0, len(skipped))
	for _, sk := range skipped {
		skippedList = append(skippedList, sk)
	}
	sort.Slice(skippedList, func(i, j int) bool { return skippedList[i].RelativePath < skippedList[j].RelativePath })
	sort.Strings(delta.Updated)
	sort.Strings(delta.Removed)

	edges, usedBy := graph.Build(records)
	result := &profile.Result{
		ScanID:    uuid.NewString(),
		Root:      prev.Root,
		Records:   records,
		Edges:     edges,
		UsedBy:    usedBy,
		Skipped:   skippedList,
		StartedAt: start,
		Duration:  time.Since(start),
	}
	s.logger.Info("incremental update complete",
		"root", rootDir,
		"updated", len(delta.Updated),
		"removed", len(delta.Removed),
		"files", len(records),
		"duration", result.Duration,
	)
	return result, delta, nil
}

func hasRecordsBelow(records map[string]*profile.FileRecord, relDir string) bool {
	prefix := relDir + "/"
	for path := range records {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
