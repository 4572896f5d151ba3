// Package graph turns per-file raw imports into an edge list and a reverse
// "used by" index. Import targets are never resolved to real files: a target is
// just the final path segment of the raw token.
package graph

import (
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lexandro/codexray/profile"
)

// TargetToken returns the text after the last '/' of a raw import, or the
// whole string when it has no separator.
func TargetToken(rawImport string) string {
	if i := strings.LastIndex(rawImport, "/"); i >= 0 {
		return rawImport[i+1:]
	}
	return rawImport
}

// keep reports whether a target token takes part in the graph.
func keep(token string) bool {
	return utf8.RuneCountInString(token) > 1
}

// Build walks records in ascending path order and imports in file order.
// Duplicate edges are preserved. Must run after every record is final.
func Build(records map[string]*profile.FileRecord) ([]profile.Edge, profile.UsedByIndex) {
	paths := make([]string, 0, len(records))
	for p := range records {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	edges := []profile.Edge{}
	usedBy := profile.UsedByIndex{}
	for _, src := range paths {
		rec := records[src]
		if rec == nil {
			continue
		}
		base := path.Base(src)
		for _, imp := range rec.RawImports {
			target := TargetToken(imp)
			if !keep(target) {
				continue
			}
			edges = append(edges, profile.Edge{Source: base, Target: target})
			set, ok := usedBy[target]
			if !ok {
				set = profile.PathSet{}
				usedBy[target] = set
			}
			set.Add(src)
		}
	}
	return edges, usedBy
}

// Hubs ranks target tokens by how many distinct files reference them, most
// referenced first; ties are broken by token in ascending byte order.
// limit <= 0 returns every token.
func Hubs(usedBy profile.UsedByIndex, limit int) []profile.Hub {
	hubs := make([]profile.Hub, 0, len(usedBy))
	for token, set := range usedBy {
		hubs = append(hubs, profile.Hub{Token: token, Dependents: set.Sorted()})
	}
	sort.Slice(hubs, func(i, j int) bool {
		if len(hubs[i].Dependents) != len(hubs[j].Dependents) {
			return len(hubs[i].Dependents) > len(hubs[j].Dependents)
		}
		return hubs[i].Token < hubs[j].Token
	})
	if limit > 0 && len(hubs) > limit {
		hubs = hubs[:limit]
	}
	return hubs
}
