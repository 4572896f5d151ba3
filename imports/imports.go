// Package imports pulls raw import tokens out of source text with one regular
// expression per language family. Tokens are returned unresolved.
package imports

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	ecmaScriptPattern = `(?:import|export)\s+(?:[\w\s{},*]+)\s+from\s+['"]([^'"]+)['"]|require\(['"]([^'"]+)['"]\)`
	pythonPattern     = `(?m)^(?:from|import)\s+([\w\.]+)`
	javaPattern       = `(?m)^import\s+([\w\.]+);`
	groovyPattern     = `(?m)^import\s+([\w\.]+)`
)

// DefaultPatterns maps an extension key (no dot) to its import pattern.
var DefaultPatterns = map[string]string{
	"ts":     ecmaScriptPattern,
	"tsx":    ecmaScriptPattern,
	"js":     ecmaScriptPattern,
	"jsx":    ecmaScriptPattern,
	"mjs":    ecmaScriptPattern,
	"cjs":    ecmaScriptPattern,
	"py":     pythonPattern,
	"java":   javaPattern,
	"groovy": groovyPattern,
	"kt":     groovyPattern,
}

// Extractor holds compiled patterns. It is immutable and safe for concurrent use.
type Extractor struct {
	patterns map[string]*regexp.Regexp
}

// NewExtractor compiles every pattern up front so a bad table fails at startup.
func NewExtractor(patterns map[string]string) (*Extractor, error) {
	compiled := make(map[string]*regexp.Regexp, len(patterns))
	for key, pattern := range patterns {
		if pattern == "" {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling import pattern for %q: %w", key, err)
		}
		compiled[strings.TrimPrefix(key, ".")] = re
	}
	return &Extractor{patterns: compiled}, nil
}

var defaultExtractor = mustExtractor(DefaultPatterns)

func mustExtractor(patterns map[string]string) *Extractor {
	e, err := NewExtractor(patterns)
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns the extractor built from DefaultPatterns.
func Default() *Extractor {
	return defaultExtractor
}

// Extract returns import tokens in content order. Unknown extensions yield an
// empty slice. For each match the first non-empty capture group is the token.
func (e *Extractor) Extract(extension string, content string) []string {
	tokens := []string{}
	re, ok := e.patterns[strings.TrimPrefix(extension, ".")]
	if !ok {
		return tokens
	}
	for _, groups := range re.FindAllStringSubmatch(content, -1) {
		for _, g := range groups[1:] {
			if g != "" {
				tokens = append(tokens, g)
				break
			}
		}
	}
	return tokens
}

// ExtensionKey returns the text after the final dot of filename, which is the
// lookup key for the pattern table. A name without a dot is its own key.
func ExtensionKey(filename string) string {
	base := filepath.Base(filename)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return base
}
