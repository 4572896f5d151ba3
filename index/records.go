package index

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/codexray/profile"
)

// RecordIndex keeps the file records of the latest scan for fast path lookups.
// It uses a map for O(1) path lookups and a sorted slice for glob iteration.
type RecordIndex struct {
	mu          sync.RWMutex
	records     map[string]*profile.FileRecord // key: relative path (forward slashes)
	sortedPaths []string
}

// NewRecordIndex creates a new empty record index.
func NewRecordIndex() *RecordIndex {
	return &RecordIndex{
		records:     make(map[string]*profile.FileRecord),
		sortedPaths: make([]string, 0),
	}
}

// Replace swaps the whole content of the index for the given records.
func (ri *RecordIndex) Replace(records map[string]*profile.FileRecord) {
	paths := make([]string, 0, len(records))
	copied := make(map[string]*profile.FileRecord, len(records))
	for path, rec := range records {
		copied[path] = rec
		paths = append(paths, path)
	}
	sort.Strings(paths)

	ri.mu.Lock()
	defer ri.mu.Unlock()
	ri.records = copied
	ri.sortedPaths = paths
}

// Add adds or updates a single record.
func (ri *RecordIndex) Add(record *profile.FileRecord) {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	_, exists := ri.records[record.RelativePath]
	ri.records[record.RelativePath] = record

	if !exists {
		ri.sortedPaths = append(ri.sortedPaths, record.RelativePath)
		sort.Strings(ri.sortedPaths)
	}
}

// Remove removes a record by its relative path.
func (ri *RecordIndex) Remove(relativePath string) {
	ri.mu.Lock()
	defer ri.mu.Unlock()

	if _, exists := ri.records[relativePath]; !exists {
		return
	}
	delete(ri.records, relativePath)

	idx := sort.SearchStrings(ri.sortedPaths, relativePath)
	if idx < len(ri.sortedPaths) && ri.sortedPaths[idx] == relativePath {
		ri.sortedPaths = append(ri.sortedPaths[:idx], ri.sortedPaths[idx+1:]...)
	}
}

// Get returns the record for a relative path, or nil if not found.
func (ri *RecordIndex) Get(relativePath string) *profile.FileRecord {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return ri.records[strings.ReplaceAll(relativePath, "\\", "/")]
}

// Count returns the number of records.
func (ri *RecordIndex) Count() int {
	ri.mu.RLock()
	defer ri.mu.RUnlock()
	return len(ri.records)
}

// LanguageCounts returns language -> record count.
func (ri *RecordIndex) LanguageCounts() map[string]int {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range ri.records {
		counts[rec.Language]++
	}
	return counts
}

// PurposeCounts returns purpose -> record count.
func (ri *RecordIndex) PurposeCounts() map[profile.Purpose]int {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	counts := make(map[profile.Purpose]int)
	for _, rec := range ri.records {
		counts[rec.Purpose]++
	}
	return counts
}

// Glob returns records whose relative path matches a doublestar pattern, in
// path order. maxResults <= 0 selects 50.
func (ri *RecordIndex) Glob(pattern string, maxResults int) ([]*profile.FileRecord, error) {
	ri.mu.RLock()
	defer ri.mu.RUnlock()

	if maxResults <= 0 {
		maxResults = 50
	}
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	var results []*profile.FileRecord
	for _, path := range ri.sortedPaths {
		if len(results) >= maxResults {
			break
		}
		matched, err := doublestar.Match(pattern, path)
		if err != nil || !matched {
			continue
		}
		results = append(results, ri.records[path])
	}
	return results, nil
}
