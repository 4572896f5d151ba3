// Package scanner walks a directory tree, profiles every admitted file and
// assembles the dependency graph once the whole tree has been read.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lexandro/codexray/classify"
	"github.com/lexandro/codexray/graph"
	"github.com/lexandro/codexray/ignore"
	"github.com/lexandro/codexray/imports"
	"github.com/lexandro/codexray/profile"
)

var (
	// ErrRootNotFound is returned when the scan root does not exist or cannot be stat'ed.
	ErrRootNotFound = errors.New("scan root not accessible")
	// ErrRootNotDir is returned when the scan root is not a directory.
	ErrRootNotDir = errors.New("scan root is not a directory")
)

// DefaultWorkers bounds concurrent per-file classification.
const DefaultWorkers = 8

// Options configures a Scanner. Zero values select the defaults.
type Options struct {
	Ignore     ignore.MatcherOptions // RootDir is filled in per scan
	Classifier *classify.Classifier
	Extractor  *imports.Extractor
	Workers    int // 1 disables parallelism
	Logger     *slog.Logger
}

// Scanner is reusable across scans and holds no per-scan state.
type Scanner struct {
	ignoreOptions ignore.MatcherOptions
	classifier    *classify.Classifier
	extractor     *imports.Extractor
	workers       int
	logger        *slog.Logger
}

// New creates a Scanner.
func New(options Options) *Scanner {
	s := &Scanner{
		ignoreOptions: options.Ignore,
		classifier:    options.Classifier,
		extractor:     options.Extractor,
		workers:       options.Workers,
		logger:        options.Logger,
	}
	if s.classifier == nil {
		s.classifier = classify.Default()
	}
	if s.extractor == nil {
		s.extractor = imports.Default()
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Scan profiles rootDir with default options.
func Scan(ctx context.Context, rootDir string) (*profile.Result, error) {
	return New(Options{}).Scan(ctx, rootDir)
}

// fileJob is one admitted file waiting to be profiled.
type fileJob struct {
	absolutePath string
	relativePath string
	info         os.FileInfo
}

// Scan walks rootDir and returns the complete result. A missing or unreadable
// root is an error; unreadable files inside it are recorded in Result.Skipped.
func (s *Scanner) Scan(ctx context.Context, rootDir string) (*profile.Result, error) {
	start := time.Now()

	rootDir, err := resolveRoot(rootDir)
	if err != nil {
		return nil, err
	}

	ignoreOptions := s.ignoreOptions
	ignoreOptions.RootDir = rootDir
	matcher := ignore.NewMatcher(ignoreOptions)

	var (
		mu      sync.Mutex
		records = make(map[string]*profile.FileRecord)
		skipped []profile.Skip
	)
	collect := func(outcome FileOutcome) {
		mu.Lock()
		defer mu.Unlock()
		if outcome.Record != nil {
			records[outcome.Record.RelativePath] = outcome.Record
			return
		}
		s.logger.Debug("skipped file", "path", outcome.Skip.RelativePath, "reason", outcome.Skip.Reason)
		skipped = append(skipped, *outcome.Skip)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.workers)

	walkErr := s.walk(groupCtx, rootDir, matcher, func(job fileJob, err error) {
		if err != nil {
			collect(skip(job.relativePath, fmt.Sprintf("stat: %v", err)))
			return
		}
		group.Go(func() error {
			collect(s.profileFile(job, matcher))
			return nil
		})
	})
	waitErr := group.Wait()
	if walkErr != nil {
		return nil, walkErr
	}
	if waitErr != nil {
		return nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].RelativePath < skipped[j].RelativePath })
	edges, usedBy := graph.Build(records)

	result := &profile.Result{
		ScanID:    uuid.NewString(),
		Root:      rootDir,
		Records:   records,
		Edges:     edges,
		UsedBy:    usedBy,
		Skipped:   skipped,
		StartedAt: start,
		Duration:  time.Since(start),
	}
	s.logger.Info("scan complete",
		"root", rootDir,
		"files", len(records),
		"skipped", len(skipped),
		"edges", len(edges),
		"duration", result.Duration,
	)
	return result, nil
}

// Profile reads and classifies a single file, applying the same size limit
// as a full scan.
func (s *Scanner) Profile(absolutePath string, relativePath string) FileOutcome {
	info, err := os.Stat(absolutePath)
	if err != nil {
		return skip(relativePath, fmt.Sprintf("stat: %v", err))
	}
	return s.profileFile(fileJob{absolutePath: absolutePath, relativePath: relativePath, info: info}, nil)
}

// profileFile checks the size limit on matcher, or on the scanner's own
// options when matcher is nil.
func (s *Scanner) profileFile(job fileJob, matcher *ignore.Matcher) FileOutcome {
	if !job.info.Mode().IsRegular() && job.info.Mode()&os.ModeSymlink == 0 {
		return skip(job.relativePath, "not a regular file")
	}
	tooLarge := false
	if matcher != nil {
		tooLarge = matcher.IsFileTooLarge(job.info.Size())
	} else {
		limit := s.ignoreOptions.MaxFileSizeBytes
		tooLarge = limit > 0 && job.info.Size() > limit
	}
	if tooLarge {
		return skip(job.relativePath, fmt.Sprintf("file too large (%d bytes)", job.info.Size()))
	}
	record, err := profileContent(job.absolutePath, job.relativePath, s.classifier, s.extractor)
	if err != nil {
		return skip(job.relativePath, err.Error())
	}
	return FileOutcome{Record: record}
}
