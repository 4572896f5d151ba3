package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lexandro/codexray/ignore"
)

// resolveRoot returns the absolute, symlink-free path of a directory.
// filepath.WalkDir does not descend into a root that is itself a symlink.
func resolveRoot(rootDir string) (string, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootNotFound, rootDir, err)
	}
	rootInfo, err := os.Stat(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootNotFound, absRoot, err)
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDir, absRoot)
	}
	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootNotFound, absRoot, err)
	}
	return resolved, nil
}

// walk visits every admitted file below rootDir, pruning ignored directories.
// visit receives a non-nil error when the file could not be stat'ed.
func (s *Scanner) walk(ctx context.Context, rootDir string, matcher *ignore.Matcher, visit func(job fileJob, err error)) error {
	return filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == rootDir {
				return fmt.Errorf("%w: %s: %v", ErrRootNotFound, rootDir, err)
			}
			// unreadable subdirectory or entry: best effort, keep walking
			s.logger.Debug("skipped path", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != rootDir && matcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !matcher.Admit(path) {
			return nil
		}

		relPath, _ := filepath.Rel(rootDir, path)
		job := fileJob{absolutePath: path, relativePath: filepath.ToSlash(relPath)}
		job.info, err = d.Info()
		visit(job, err)
		return nil
	})
}

// Inventory lists the files a scan of rootDir would admit, with their
// modification times, without reading any content.
func (s *Scanner) Inventory(ctx context.Context, rootDir string) (map[string]time.Time, error) {
	rootDir, err := resolveRoot(rootDir)
	if err != nil {
		return nil, err
	}
	ignoreOptions := s.ignoreOptions
	ignoreOptions.RootDir = rootDir
	matcher := ignore.NewMatcher(ignoreOptions)

	files := make(map[string]time.Time)
	err = s.walk(ctx, rootDir, matcher, func(job fileJob, err error) {
		if err != nil {
			return
		}
		files[job.relativePath] = job.info.ModTime()
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
