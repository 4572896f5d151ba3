package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which directories are pruned and which files are admitted.
// The fixed rules (ignored directory names, extension allowlist, extensionless
// names) always apply; exclude globs and .gitignore are opt-in extras.
// Thread-safe: Reload() acquires a write lock, the query methods a read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	ignoredDirs      map[string]struct{}
	textExtensions   []string
	extensionless    map[string]struct{}
	excludePatterns  []string
	respectGitignore bool
	gitIgnore        gitignore.GitIgnore
	maxFileSizeBytes int64
}

// MatcherOptions configures the matcher. Nil slices select the defaults.
type MatcherOptions struct {
	RootDir            string
	IgnoredDirs        []string
	TextExtensions     []string
	ExtensionlessNames []string
	ExcludePatterns    []string // doublestar globs against the relative path
	RespectGitignore   bool
	MaxFileSizeBytes   int64 // 0 means unlimited
}

// NewMatcher creates a matcher for options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	if options.IgnoredDirs == nil {
		options.IgnoredDirs = DefaultIgnoredDirs
	}
	if options.TextExtensions == nil {
		options.TextExtensions = DefaultTextExtensions
	}
	if options.ExtensionlessNames == nil {
		options.ExtensionlessNames = DefaultExtensionlessNames
	}

	matcher := &Matcher{
		rootDir:          options.RootDir,
		ignoredDirs:      toSet(options.IgnoredDirs),
		textExtensions:   append([]string(nil), options.TextExtensions...),
		extensionless:    toSet(options.ExtensionlessNames),
		respectGitignore: options.RespectGitignore,
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}
	for _, pattern := range options.ExcludePatterns {
		pattern = filepath.ToSlash(pattern)
		if doublestar.ValidatePattern(pattern) {
			matcher.excludePatterns = append(matcher.excludePatterns, pattern)
		}
	}
	if matcher.respectGitignore {
		matcher.gitIgnore = loadIgnoreFile(filepath.Join(options.RootDir, ".gitignore"), options.RootDir)
	}
	return matcher
}

// ShouldIgnoreDir returns true if traversal must not descend into the directory.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if _, ok := m.ignoredDirs[filepath.Base(absolutePath)]; ok {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	relativePath := m.relative(absolutePath)
	return m.matchesExclude(relativePath) || m.matchesGitignore(relativePath, true)
}

// Admit returns true if the file passes the allowlist and is not excluded.
// It does not look at ancestors; traversal pruning handles those.
func (m *Matcher) Admit(absolutePath string) bool {
	if !m.IsTextFileName(filepath.Base(absolutePath)) {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	relativePath := m.relative(absolutePath)
	return !m.matchesExclude(relativePath) && !m.matchesGitignore(relativePath, false)
}

// ShouldIgnore is the inverse of Admit, extended to paths that sit below an
// ignored directory. Used for file system events that bypass traversal.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	relativePath := m.relative(absolutePath)
	parts := strings.Split(relativePath, "/")
	for _, dir := range parts[:len(parts)-1] {
		if _, ok := m.ignoredDirs[dir]; ok {
			return true
		}
	}
	return !m.Admit(absolutePath)
}

// IsTextFileName applies the extension allowlist and the extensionless names.
func (m *Matcher) IsTextFileName(name string) bool {
	if _, ok := m.extensionless[name]; ok {
		return true
	}
	for _, ext := range m.textExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// IsFileTooLarge returns true if a size limit is set and the file exceeds it.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return m.maxFileSizeBytes > 0 && fileSize > m.maxFileSizeBytes
}

// Reload re-reads .gitignore from disk when it is honoured.
func (m *Matcher) Reload() {
	if !m.respectGitignore {
		return
	}
	newGitIgnore := loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = newGitIgnore
}

func (m *Matcher) relative(absolutePath string) string {
	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	return filepath.ToSlash(relativePath)
}

func (m *Matcher) matchesExclude(relativePath string) bool {
	for _, pattern := range m.excludePatterns {
		if matched, err := doublestar.Match(pattern, relativePath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, filepath.Base(relativePath)); err == nil && matched {
			return true
		}
	}
	return false
}

func (m *Matcher) matchesGitignore(relativePath string, isDir bool) bool {
	if m.gitIgnore == nil {
		return false
	}
	match := m.gitIgnore.Relative(relativePath, isDir)
	return match != nil && match.Ignore()
}

// loadIgnoreFile reads an ignore file and creates a GitIgnore matcher from it.
// Uses io.Reader approach to ensure the file handle is properly closed on Windows.
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
