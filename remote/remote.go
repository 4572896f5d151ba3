// Package remote materializes a remote repository reference into a temporary
// local checkout and removes it again when the caller is done.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
)

// ErrNotRemote is returned when a target is not a recognizable repository URL.
var ErrNotRemote = errors.New("not a remote repository reference")

// Repository describes a parsed remote reference.
type Repository struct {
	Raw      string
	CloneURL string
	Host     string
	Name     string
	FullName string
}

// Parse recognizes VCS URLs such as https://github.com/org/repo.
func Parse(target string) (*Repository, error) {
	target = strings.TrimSpace(target)
	info, err := vcsurl.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotRemote, target, err)
	}
	cloneURL, err := info.Remote(vcsurl.HTTPS)
	if err != nil || cloneURL == "" {
		cloneURL = target
	}
	return &Repository{
		Raw:      target,
		CloneURL: cloneURL,
		Host:     string(info.Host),
		Name:     info.Name,
		FullName: info.FullName,
	}, nil
}

// IsRemote reports whether target should be cloned rather than scanned in
// place. An existing local path always wins.
func IsRemote(target string) bool {
	if _, err := os.Stat(target); err == nil {
		return false
	}
	_, err := Parse(target)
	return err == nil
}

// cloneFunc performs the actual clone into an existing empty directory.
type cloneFunc func(ctx context.Context, dir string, url string, progress io.Writer) error

func shallowClone(ctx context.Context, dir string, url string, progress io.Writer) error {
	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Progress:     progress,
	})
	return err
}

// Options configures a Cloner. Zero values select the defaults.
type Options struct {
	TempDir  string    // parent directory for checkouts, os.TempDir() when empty
	Progress io.Writer // git progress output, discarded when nil
	Logger   *slog.Logger
}

// Cloner shallow-clones repositories into throwaway directories.
type Cloner struct {
	tempDir  string
	progress io.Writer
	logger   *slog.Logger
	clone    cloneFunc
}

// NewCloner creates a Cloner backed by go-git.
func NewCloner(options Options) *Cloner {
	c := &Cloner{
		tempDir:  options.TempDir,
		progress: options.Progress,
		logger:   options.Logger,
		clone:    shallowClone,
	}
	if c.tempDir == "" {
		c.tempDir = os.TempDir()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Checkout is a cloned working copy. Call Cleanup when done.
type Checkout struct {
	Dir        string
	Repository *Repository
}

// Clone creates a fresh temp dir and clones repo into it with depth 1. On
// failure the temp dir is removed before returning.
func (c *Cloner) Clone(ctx context.Context, repo *Repository) (*Checkout, error) {
	dir := filepath.Join(c.tempDir, "codexray-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating clone dir: %w", err)
	}

	c.logger.Info("cloning repository", "url", repo.CloneURL, "dir", dir)
	if err := c.clone(ctx, dir, repo.CloneURL, c.progress); err != nil {
		if cleanupErr := removeTree(dir); cleanupErr != nil {
			c.logger.Warn("failed to remove clone dir", "dir", dir, "error", cleanupErr)
		}
		return nil, fmt.Errorf("cloning %s: %w", repo.CloneURL, err)
	}
	return &Checkout{Dir: dir, Repository: repo}, nil
}

// With clones target, runs fn on the checkout and always removes the checkout
// afterwards, whatever fn returns.
func (c *Cloner) With(ctx context.Context, target string, fn func(checkout *Checkout) error) (err error) {
	repo, err := Parse(target)
	if err != nil {
		return err
	}
	checkout, err := c.Clone(ctx, repo)
	if err != nil {
		return err
	}
	defer func() {
		if cleanupErr := checkout.Cleanup(); cleanupErr != nil {
			c.logger.Warn("failed to remove clone dir", "dir", checkout.Dir, "error", cleanupErr)
			if err == nil {
				err = cleanupErr
			}
		}
	}()
	return fn(checkout)
}

// Cleanup removes the checkout directory.
func (ch *Checkout) Cleanup() error {
	return removeTree(ch.Dir)
}

// removeTree makes every entry writable first so read-only git objects do not
// block removal on Windows.
func removeTree(dir string) error {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		mode := os.FileMode(0o600)
		if d.IsDir() {
			mode = 0o700
		}
		_ = os.Chmod(path, mode)
		return nil
	})
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing %s: %w", dir, err)
	}
	return nil
}
