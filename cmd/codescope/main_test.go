package main

import (
	"testing"

	"codescope/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFlag(t *testing.T, name, value string) {
	t.Helper()
	flags := analyzeCmd.Flags()
	prev := flags.Lookup(name).Value.String()
	require.NoError(t, flags.Set(name, value))
	t.Cleanup(func() {
		flags.Set(name, prev)
		flags.Lookup(name).Changed = false
	})
}

func TestAnalysisOptions(t *testing.T) {
	base := config.DefaultAnalysis()
	base.MaxDepth = 7
	base.MaxExamplesPerCategory = 3

	t.Run("unset flags keep config values", func(t *testing.T) {
		opts := analysisOptions(analyzeCmd, base)
		assert.Equal(t, 7, opts.MaxDepth)
		assert.Equal(t, 3, opts.MaxExamplesPerCategory)
		assert.True(t, opts.ParallelEnabled())
	})

	t.Run("set flags override", func(t *testing.T) {
		setFlag(t, "max-depth", "2")
		setFlag(t, "max-examples", "9")
		setFlag(t, "sequential", "true")

		opts := analysisOptions(analyzeCmd, base)
		assert.Equal(t, 2, opts.MaxDepth)
		assert.Equal(t, 9, opts.MaxExamplesPerCategory)
		assert.False(t, opts.ParallelEnabled())
		assert.Equal(t, 7, base.MaxDepth)
	})

	t.Run("bad value is rejected by the flag set", func(t *testing.T) {
		assert.Error(t, analyzeCmd.Flags().Set("max-depth", "deep"))
	})
}
