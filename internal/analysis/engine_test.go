package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"codescope/internal/config"
	"codescope/internal/ir"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixed }

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	return root
}

var expressApp = map[string]string{
	"package.json": `{"name": "shop", "description": "demo shop", "dependencies": {"express": "^4.18.2"}, "devDependencies": {"jest": "^29.0.0"}}`,
	"server.js":    "const express = require('express')\nconst app = express()\n\napp.get('/', (req, res) => res.send('ok'))\napp.listen(3000)\n",
	"README.md":    "# shop\n",
	"src/routes/orders.js": `const router = require('express').Router()

router.get('/orders', async (req, res) => {
  const orders = await db.list()
  if (!orders) {
    return res.status(404).end()
  }
  for (const o of orders) {
    o.total = o.items.length
  }
  res.json(orders)
})

module.exports = router
`,
}

func TestEngine_ExpressScenario(t *testing.T) {
	root := writeTree(t, expressApp)
	got, err := NewEngine(config.DefaultAnalysis(), WithClock(clock)).Analyze(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(root), got.Repository.Name)
	assert.Equal(t, fixed, got.AnalyzedAt)

	var frameworks []string
	for _, f := range got.Technologies.Frameworks {
		frameworks = append(frameworks, f.Name)
	}
	assert.Contains(t, frameworks, "Express")

	var found bool
	for _, p := range got.Patterns {
		if p.Name == "Middleware & Routing" {
			found = true
			assert.GreaterOrEqual(t, p.Frequency, 1)
		}
	}
	assert.True(t, found)

	require.Len(t, got.Examples, len(ir.Categories))
	assert.NotEmpty(t, got.Examples[ir.CategoryAPI])

	assert.Equal(t, "backend", got.Structure.ProjectType)
	assert.Equal(t, 4, got.Structure.TotalFiles)
	require.NotNil(t, got.FileTree)
	assert.Equal(t, ".", got.FileTree.Path)
	assert.Equal(t, ir.ImportanceHigh, got.FileTree.Importance)

	assert.Equal(t, 2, got.Quality.FilesAnalyzed)
	assert.NotNil(t, got.Insights.Strengths)
}

func TestEngine_Idempotent(t *testing.T) {
	root := writeTree(t, expressApp)
	e := NewEngine(config.DefaultAnalysis(), WithClock(clock))

	a, err := e.Analyze(context.Background(), root)
	require.NoError(t, err)
	b, err := e.Analyze(context.Background(), root)
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(ja), string(jb))
}

func TestEngine_SequentialMatchesParallel(t *testing.T) {
	root := writeTree(t, expressApp)
	off := false
	seq := config.DefaultAnalysis()
	seq.Parallel = &off

	a, err := NewEngine(config.DefaultAnalysis(), WithClock(clock)).Analyze(context.Background(), root)
	require.NoError(t, err)
	b, err := NewEngine(seq, WithClock(clock)).Analyze(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEngine_EmptyRepository(t *testing.T) {
	got, err := NewEngine(config.AnalysisConfig{}).Analyze(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Zero(t, got.Quality.TotalLines)
	assert.Equal(t, 100.0, got.Quality.MaintainabilityIndex)
	assert.Zero(t, got.Quality.DuplicateCodePercentage)
	for _, c := range ir.Categories {
		list, ok := got.Examples[c]
		assert.True(t, ok, c)
		assert.Empty(t, list, c)
	}
	assert.Empty(t, got.Patterns)
	assert.Empty(t, got.Technologies.Frameworks)
	assert.Equal(t, "unknown", got.Structure.ProjectType)
}

func TestEngine_PathErrors(t *testing.T) {
	e := NewEngine(config.DefaultAnalysis())

	t.Run("missing", func(t *testing.T) {
		got, err := e.Analyze(context.Background(), filepath.Join(t.TempDir(), "absent"))
		assert.Nil(t, got)
		var pe *PathError
		require.True(t, errors.As(err, &pe))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("file", func(t *testing.T) {
		root := writeTree(t, map[string]string{"main.go": "package main\n"})
		got, err := e.Analyze(context.Background(), filepath.Join(root, "main.go"))
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrNotDirectory)
	})
}

func TestEngine_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewEngine(config.DefaultAnalysis()).Analyze(ctx, writeTree(t, expressApp))
	assert.Nil(t, got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Progress(t *testing.T) {
	off := false
	cfg := config.DefaultAnalysis()
	cfg.Parallel = &off

	var mu sync.Mutex
	var seen []Progress
	_, err := NewEngine(cfg, WithProgress(func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
	})).Analyze(context.Background(), writeTree(t, expressApp))
	require.NoError(t, err)

	require.Len(t, seen, len(Stages))
	for i, p := range seen {
		assert.Equal(t, Stages[i], p.Stage)
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, len(Stages), p.Total)
	}
}

func TestEngine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewEngine(config.DefaultAnalysis(), WithMetrics(reg))

	_, err := e.Analyze(context.Background(), writeTree(t, expressApp))
	require.NoError(t, err)
	_, err = e.Analyze(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)

	assert.Equal(t, 4.0, testutil.ToFloat64(e.metrics.filesScanned))
	assert.Equal(t, len(Stages), testutil.CollectAndCount(e.metrics.stageDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.runs.WithLabelValues("invalid_path")))
}
