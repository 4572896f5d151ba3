package index

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/lexandro/codexray/profile"
)

// SearchIndex provides full-text search over file record metadata using a
// Bleve in-memory index: path words, purpose, language, risk categories,
// objectives and import tokens.
type SearchIndex struct {
	mu      sync.RWMutex
	index   bleve.Index
	records map[string]*profile.FileRecord
}

// NewSearchIndex creates a new in-memory Bleve record index.
func NewSearchIndex() (*SearchIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating bleve index: %w", err)
	}
	return &SearchIndex{
		index:   bleveIndex,
		records: make(map[string]*profile.FileRecord),
	}, nil
}

// recordDocument is the document structure stored in Bleve.
type recordDocument struct {
	Path       string `json:"path"`
	Words      string `json:"words"`
	Purpose    string `json:"purpose"`
	Language   string `json:"language"`
	Risks      string `json:"risks"`
	Objectives string `json:"objectives"`
	Imports    string `json:"imports"`
}

func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	for _, name := range []string{"words", "risks", "objectives", "imports"} {
		textField := bleve.NewTextFieldMapping()
		textField.Store = false
		textField.IncludeInAll = true
		docMapping.AddFieldMappingsAt(name, textField)
	}

	// purpose and language are filter fields: matched exactly, not tokenized
	for _, name := range []string{"path", "purpose", "language"} {
		keywordField := bleve.NewKeywordFieldMapping()
		keywordField.Store = true
		keywordField.IncludeInAll = false
		docMapping.AddFieldMappingsAt(name, keywordField)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func newRecordDocument(rec *profile.FileRecord) recordDocument {
	categories := make([]string, 0, len(rec.Risks))
	for _, risk := range rec.Risks {
		categories = append(categories, string(risk.Category), risk.Severity.String())
	}
	return recordDocument{
		Path:       rec.RelativePath,
		Words:      splitWords(rec.RelativePath) + " " + string(rec.Purpose) + " " + rec.Language,
		Purpose:    string(rec.Purpose),
		Language:   rec.Language,
		Risks:      strings.Join(categories, " "),
		Objectives: strings.Join(rec.Objectives, " "),
		Imports:    splitWords(strings.Join(rec.RawImports, " ")),
	}
}

// splitWords breaks paths and import strings on every non-alphanumeric rune
// so "tests/login.spec.ts" is searchable by "login".
func splitWords(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

// Replace drops the current documents and indexes the given records in one batch.
func (si *SearchIndex) Replace(records map[string]*profile.FileRecord) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating bleve index: %w", err)
	}

	batch := fresh.NewBatch()
	copied := make(map[string]*profile.FileRecord, len(records))
	for path, rec := range records {
		if err := batch.Index(path, newRecordDocument(rec)); err != nil {
			fresh.Close()
			return fmt.Errorf("indexing record %s: %w", path, err)
		}
		copied[path] = rec
	}
	if err := fresh.Batch(batch); err != nil {
		fresh.Close()
		return fmt.Errorf("applying index batch: %w", err)
	}

	si.mu.Lock()
	defer si.mu.Unlock()
	old := si.index
	si.index = fresh
	si.records = copied
	return old.Close()
}

// IndexRecord adds or updates a single record.
func (si *SearchIndex) IndexRecord(rec *profile.FileRecord) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	si.records[rec.RelativePath] = rec
	if err := si.index.Index(rec.RelativePath, newRecordDocument(rec)); err != nil {
		return fmt.Errorf("indexing record %s: %w", rec.RelativePath, err)
	}
	return nil
}

// RemoveRecord removes a record from the search index.
func (si *SearchIndex) RemoveRecord(relativePath string) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	delete(si.records, relativePath)
	if err := si.index.Delete(relativePath); err != nil {
		return fmt.Errorf("removing record %s from index: %w", relativePath, err)
	}
	return nil
}

// SearchOptions configures a record search.
type SearchOptions struct {
	Query      string
	Purpose    string // exact purpose tag filter
	Language   string // exact language filter
	FileGlob   string // doublestar pattern over the relative path
	MaxResults int
}

// SearchHit is one matching record with its relevance score.
type SearchHit struct {
	Record *profile.FileRecord
	Score  float64
}

// Search runs a query over the indexed records. Query format:
//   - empty: every record (use the filters)
//   - plain text: match query (word-level matching)
//   - "quoted text": phrase query
//   - /regex/: regexp query over indexed terms
func (si *SearchIndex) Search(options SearchOptions) ([]SearchHit, uint64, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	if options.MaxResults <= 0 {
		options.MaxResults = 50
	}
	glob := strings.ReplaceAll(options.FileGlob, "\\", "/")
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return nil, 0, fmt.Errorf("invalid glob pattern: %s", options.FileGlob)
	}

	conjuncts := []query.Query{buildQuery(options.Query)}
	if options.Purpose != "" {
		q := bleve.NewTermQuery(options.Purpose)
		q.SetField("purpose")
		conjuncts = append(conjuncts, q)
	}
	if options.Language != "" {
		q := bleve.NewTermQuery(options.Language)
		q.SetField("language")
		conjuncts = append(conjuncts, q)
	}

	searchRequest := bleve.NewSearchRequest(bleve.NewConjunctionQuery(conjuncts...))
	// over-fetch because the glob filter runs after Bleve
	searchRequest.Size = options.MaxResults * 5
	if glob == "" {
		searchRequest.Size = options.MaxResults
	}
	searchRequest.Fields = []string{"path"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, 0, fmt.Errorf("searching index: %w", err)
	}

	hits := make([]SearchHit, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		rec, ok := si.records[hit.ID]
		if !ok {
			continue
		}
		if glob != "" {
			matched, matchErr := doublestar.Match(glob, hit.ID)
			if matchErr != nil || !matched {
				continue
			}
		}
		hits = append(hits, SearchHit{Record: rec, Score: hit.Score})
		if len(hits) >= options.MaxResults {
			break
		}
	}
	return hits, searchResults.Total, nil
}

// buildQuery parses the query string into a Bleve query.
func buildQuery(queryString string) query.Query {
	queryString = strings.TrimSpace(queryString)

	if queryString == "" {
		return bleve.NewMatchAllQuery()
	}
	if strings.HasPrefix(queryString, "/") && strings.HasSuffix(queryString, "/") && len(queryString) > 2 {
		return bleve.NewRegexpQuery(queryString[1 : len(queryString)-1])
	}
	if strings.HasPrefix(queryString, "\"") && strings.HasSuffix(queryString, "\"") && len(queryString) > 2 {
		return bleve.NewMatchPhraseQuery(queryString[1 : len(queryString)-1])
	}
	return bleve.NewMatchQuery(queryString)
}

// DocumentCount returns the number of documents in the Bleve index.
func (si *SearchIndex) DocumentCount() uint64 {
	si.mu.RLock()
	defer si.mu.RUnlock()
	count, _ := si.index.DocCount()
	return count
}

// Close closes the Bleve index.
func (si *SearchIndex) Close() error {
	si.mu.Lock()
	defer si.mu.Unlock()
	return si.index.Close()
}
