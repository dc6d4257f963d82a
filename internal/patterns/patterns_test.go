package patterns

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"codescope/internal/catalog"
	"codescope/internal/crawler"
	"codescope/internal/index"
	"codescope/internal/ir"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, files map[string]string) *index.Snapshot {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	snap, err := index.NewIndexer(index.Options{
		Crawler: crawler.Options{MaxDepth: 10, Logger: zerolog.Nop()},
	}).Build(root)
	require.NoError(t, err)
	return snap
}

func find(list []ir.PatternDetection, name string) (ir.PatternDetection, bool) {
	for _, p := range list {
		if p.Name == name {
			return p, true
		}
	}
	return ir.PatternDetection{}, false
}

func assertContract(t *testing.T, list []ir.PatternDetection) {
	t.Helper()
	for i, p := range list {
		assert.GreaterOrEqual(t, p.Frequency, 1, p.Name)
		assert.LessOrEqual(t, len(p.Examples), MaxExamples, p.Name)
		if i > 0 {
			assert.GreaterOrEqual(t, list[i-1].Frequency, p.Frequency)
		}
	}
}

func TestDetect_ExpressRoutes(t *testing.T) {
	snap := snapshot(t, map[string]string{
		"package.json": `{"dependencies": {"express": "^4.18.2"}}`,
		"server.js":    "const express = require('express')\nconst app = express()\n\napp.get('/', (req, res) => res.send('ok'))\napp.listen(3000)\n",
	})
	got := New(zerolog.Nop(), nil).Detect(snap)
	assertContract(t, got)

	routing, ok := find(got, "Middleware & Routing")
	require.True(t, ok)
	assert.Equal(t, 1, routing.Frequency)
	require.Len(t, routing.Examples, 1)
	ex := routing.Examples[0]
	assert.Equal(t, "server.js", ex.FilePath)
	assert.Equal(t, 1, ex.StartLine)
	assert.Equal(t, 5, ex.EndLine)
	assert.Contains(t, ex.Code, "app.get(")
	assert.Contains(t, ex.Patterns, "Middleware & Routing")
}

func TestDetect_CountsEveryMatch(t *testing.T) {
	route := "app.get('/x', h)\n"
	snap := snapshot(t, map[string]string{
		"a.js": strings.Repeat(route, 3),
		"b.js": strings.Repeat(route, 2),
	})
	cat := []catalog.Pattern{{
		Name:           "Routes",
		Recommendation: "r",
		Content:        regexp.MustCompile(`app\.get\(`),
	}}
	got := New(zerolog.Nop(), cat).Detect(snap)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Frequency)
	// One example per file.
	require.Len(t, got[0].Examples, 2)
	assert.Equal(t, "a.js", got[0].Examples[0].FilePath)
	assert.Equal(t, "b.js", got[0].Examples[1].FilePath)
}

func TestDetect_ContextWindow(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 40; i++ {
		if i == 10 {
			b.WriteString("app.get('/x', h)\n")
			continue
		}
		fmt.Fprintf(&b, "const v%d = %d\n", i, i)
	}
	snap := snapshot(t, map[string]string{"routes.js": b.String()})
	cat := []catalog.Pattern{{Name: "Routes", Content: regexp.MustCompile(`app\.get\(`)}}

	got := New(zerolog.Nop(), cat).Detect(snap)
	require.Len(t, got, 1)
	ex := got[0].Examples[0]
	assert.Equal(t, 5, ex.StartLine)
	assert.Equal(t, 25, ex.EndLine)
	assert.Equal(t, index.SliceLines(index.SplitLines(b.String()), 5, 25), ex.Code)
}

func TestDetect_FileOnlyPattern(t *testing.T) {
	files := map[string]string{"src/app.js": "x\n"}
	for i := 0; i < 5; i++ {
		files[fmt.Sprintf("src/controllers/c%d.js", i)] = strings.Repeat("line\n", 30)
	}
	snap := snapshot(t, files)
	cat := []catalog.Pattern{{Name: "Controllers", File: regexp.MustCompile(`(^|/)controllers/`)}}

	got := New(zerolog.Nop(), cat).Detect(snap)
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].Frequency)
	require.Len(t, got[0].Examples, MaxExamples)
	for _, ex := range got[0].Examples {
		assert.Equal(t, 1, ex.StartLine)
		assert.Equal(t, fileHeadLines, ex.EndLine)
	}
}

func TestDetect_SortedStable(t *testing.T) {
	snap := snapshot(t, map[string]string{
		"a.js": "alpha\nbeta\ngamma\ngamma\ngamma\n",
	})
	cat := []catalog.Pattern{
		{Name: "Alpha", Content: regexp.MustCompile(`alpha`)},
		{Name: "Missing", Content: regexp.MustCompile(`delta`)},
		{Name: "Beta", Content: regexp.MustCompile(`beta`)},
		{Name: "Gamma", Content: regexp.MustCompile(`gamma`)},
	}
	got := New(zerolog.Nop(), cat).Detect(snap)

	var names []string
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, names)
}

func TestDetect_EmptyRepository(t *testing.T) {
	got := New(zerolog.Nop(), nil).Detect(snapshot(t, map[string]string{}))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDetect_BuiltInCatalogContract(t *testing.T) {
	snap := snapshot(t, map[string]string{
		"internal/store/store.go":      "package store\n\ntype UserStore interface {\n\tGet(id string) error\n}\n\nfunc NewUserStore() UserStore {\n\tif err != nil {\n\t}\n\treturn nil\n}\n",
		"internal/store/store_test.go": "package store\n\nfunc TestGet(t *testing.T) {\n}\n",
		"web/src/App.tsx":              "import { useState } from 'react'\nexport function App() {\n  const [a] = useState(0)\n  useEffect(() => {}, [])\n  return a\n}\n",
	})
	got := New(zerolog.Nop(), nil).Detect(snap)
	assertContract(t, got)

	for _, name := range []string{"Interfaces", "Repository Pattern", "Unit Tests", "React Hooks", "Dependency Injection"} {
		_, ok := find(got, name)
		assert.True(t, ok, name)
	}
}
