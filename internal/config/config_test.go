package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Analysis.MaxDepth, cfg.Analysis.MaxDepth)
	assert.Equal(t, def.Analysis.IgnorePatterns, cfg.Analysis.IgnorePatterns)
	assert.Equal(t, 5, cfg.Analysis.MaxExamplesPerCategory)
	assert.True(t, cfg.Analysis.GitignoreEnabled())
	assert.True(t, cfg.Analysis.ParallelEnabled())
	assert.Equal(t, "codescope.db", cfg.Storage.Path)
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codescope.yaml")
	body := `
analysis:
  max_depth: 4
  ignore_patterns: ["node_modules", "*.min.js"]
  max_examples_per_category: 2
  parallel: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("CODESCOPE_DB", "/tmp/history.db")
	t.Setenv("CODESCOPE_MAX_FILE_SIZE_KB", "64")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	t.Run("yaml values", func(t *testing.T) {
		assert.Equal(t, 4, cfg.Analysis.MaxDepth)
		assert.Equal(t, []string{"node_modules", "*.min.js"}, cfg.Analysis.IgnorePatterns)
		assert.Equal(t, 2, cfg.Analysis.MaxExamplesPerCategory)
		assert.False(t, cfg.Analysis.ParallelEnabled())
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("env overrides", func(t *testing.T) {
		assert.Equal(t, "/tmp/history.db", cfg.Storage.Path)
		assert.Equal(t, int64(64*1024), cfg.Analysis.MaxFileSize())
	})

	t.Run("defaults fill the rest", func(t *testing.T) {
		assert.Equal(t, 200, cfg.Analysis.QualitySampleLimit)
		assert.Equal(t, "console", cfg.Log.Format)
	})
}

func TestLoadConfig_BadEnv(t *testing.T) {
	t.Setenv("CODESCOPE_MAX_DEPTH", "deep")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [unclosed"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestAnalysisConfig_WithDefaults(t *testing.T) {
	got := AnalysisConfig{MaxDepth: 3}.WithDefaults()
	def := DefaultAnalysis()

	assert.Equal(t, 3, got.MaxDepth)
	assert.Equal(t, def.IgnorePatterns, got.IgnorePatterns)
	assert.Equal(t, def.QualitySampleLimit, got.QualitySampleLimit)
	assert.Equal(t, def.InsightLimit, got.InsightLimit)
	assert.True(t, got.GitignoreEnabled())
	assert.True(t, got.ParallelEnabled())

	empty := AnalysisConfig{IgnorePatterns: []string{}}.WithDefaults()
	assert.Empty(t, empty.IgnorePatterns, "an explicit empty list disables ignoring")
}
