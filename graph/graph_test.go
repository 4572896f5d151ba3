package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexandro/codexray/profile"
)

func record(path string, imports ...string) *profile.FileRecord {
	return &profile.FileRecord{RelativePath: path, RawImports: imports}
}

func records(recs ...*profile.FileRecord) map[string]*profile.FileRecord {
	m := make(map[string]*profile.FileRecord, len(recs))
	for _, r := range recs {
		m[r.RelativePath] = r
	}
	return m
}

func Test_TargetToken(t *testing.T) {
	assert.Equal(t, "auth", TargetToken("../utils/auth"))
	assert.Equal(t, "react", TargetToken("react"))
	assert.Equal(t, "", TargetToken("lib/"))
	assert.Equal(t, "os.path", TargetToken("os.path"))
}

func Test_Build_LoginScenario(t *testing.T) {
	recs := records(
		record("src/login.js", "../utils/auth"),
		record("src/utils/auth.js"),
	)

	edges, usedBy := Build(recs)

	assert.Equal(t, []profile.Edge{{Source: "login.js", Target: "auth"}}, edges)
	require.Contains(t, usedBy, "auth")
	assert.Equal(t, []string{"src/login.js"}, usedBy["auth"].Sorted())
	assert.Len(t, usedBy, 1)
}

func Test_Build_ShortTokensExcluded(t *testing.T) {
	recs := records(record("a.js", "x", "./y", "lib/", "ok/zz", "é"))

	edges, usedBy := Build(recs)

	assert.Equal(t, []profile.Edge{{Source: "a.js", Target: "zz"}}, edges)
	assert.NotContains(t, usedBy, "x")
	assert.NotContains(t, usedBy, "y")
	assert.NotContains(t, usedBy, "")
	assert.NotContains(t, usedBy, "é")
}

func Test_Build_EdgeCountMatchesQualifyingImports(t *testing.T) {
	recs := records(
		record("a/one.py", "os", "app.models", "q"),
		record("b/two.js", "./a", "react", "react", "../lib/util"),
		record("c/three.java"),
	)

	edges, _ := Build(recs)

	qualifying := 0
	for _, r := range recs {
		for _, imp := range r.RawImports {
			if len([]rune(TargetToken(imp))) > 1 {
				qualifying++
			}
		}
	}
	assert.Equal(t, qualifying, len(edges))
}

func Test_Build_DuplicateEdgesKept(t *testing.T) {
	recs := records(record("b.js", "react", "react"))

	edges, usedBy := Build(recs)

	assert.Len(t, edges, 2)
	assert.Len(t, usedBy["react"], 1)
}

func Test_Build_DeterministicOrder(t *testing.T) {
	recs := records(
		record("z.js", "zeta"),
		record("a.js", "alpha", "beta"),
		record("m/a.js", "gamma"),
	)

	edges, _ := Build(recs)

	assert.Equal(t, []profile.Edge{
		{Source: "a.js", Target: "alpha"},
		{Source: "a.js", Target: "beta"},
		{Source: "a.js", Target: "gamma"},
		{Source: "z.js", Target: "zeta"},
	}, edges)
}

func Test_Build_Empty(t *testing.T) {
	edges, usedBy := Build(nil)
	assert.Empty(t, edges)
	assert.Empty(t, usedBy)
}

func Test_Hubs_RankingAndTieBreak(t *testing.T) {
	usedBy := profile.UsedByIndex{
		"react":  profile.PathSet{"a.js": {}, "b.js": {}, "c.js": {}},
		"lodash": profile.PathSet{"a.js": {}},
		"auth":   profile.PathSet{"a.js": {}, "b.js": {}},
		"api":    profile.PathSet{"c.js": {}, "d.js": {}},
	}

	hubs := Hubs(usedBy, 0)

	require.Len(t, hubs, 4)
	assert.Equal(t, "react", hubs[0].Token)
	assert.Equal(t, "api", hubs[1].Token)
	assert.Equal(t, "auth", hubs[2].Token)
	assert.Equal(t, "lodash", hubs[3].Token)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, hubs[0].Dependents)
}

func Test_Hubs_Limit(t *testing.T) {
	usedBy := profile.UsedByIndex{
		"aa": profile.PathSet{"x": {}},
		"bb": profile.PathSet{"x": {}},
		"cc": profile.PathSet{"x": {}},
	}
	hubs := Hubs(usedBy, 2)
	require.Len(t, hubs, 2)
	assert.Equal(t, "aa", hubs[0].Token)
	assert.Equal(t, "bb", hubs[1].Token)
}
