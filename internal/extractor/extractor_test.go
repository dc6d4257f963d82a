package extractor

import (
	"os"
	"path/filepath"
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

var shopRoot = filepath.Join("testdata", "shop")

func buildSnapshot(t *testing.T, root string) *index.Snapshot {
	t.Helper()
	snap, err := index.NewIndexer(index.Options{
		Crawler:     crawler.Options{MaxDepth: 10, Logger: zerolog.Nop()},
		MaxFileSize: 1 << 20,
	}).Build(root)
	require.NoError(t, err)
	return snap
}

func titles(examples []ir.CodeExample) []string {
	out := make([]string, 0, len(examples))
	for _, ex := range examples {
		out = append(out, ex.Title)
	}
	return out
}

func TestExtractor_Extract(t *testing.T) {
	snap := buildSnapshot(t, shopRoot)
	got := NewExtractor(Options{MaxPerCategory: 5, Logger: zerolog.Nop()}).Extract(snap)

	t.Run("every category present", func(t *testing.T) {
		for _, c := range ir.Categories {
			_, ok := got[c]
			assert.True(t, ok, c)
		}
	})

	t.Run("component", func(t *testing.T) {
		require.Len(t, got[ir.CategoryComponent], 1)
		cart := got[ir.CategoryComponent][0]
		assert.Equal(t, "Cart", cart.Title)
		assert.Equal(t, "src/components/Cart.jsx", cart.FilePath)
		assert.Equal(t, 3, cart.StartLine)
		assert.Equal(t, 19, cart.EndLine)
		assert.Contains(t, cart.Patterns, "React Hooks")
	})

	t.Run("function filter", func(t *testing.T) {
		names := titles(got[ir.CategoryFunction])
		assert.ElementsMatch(t, []string{"createOrder", "process_items"}, names)
	})

	t.Run("python block by indentation", func(t *testing.T) {
		for _, ex := range got[ir.CategoryFunction] {
			if ex.Title == "process_items" {
				assert.Equal(t, 6, ex.StartLine)
				assert.Equal(t, 11, ex.EndLine)
				assert.Equal(t, "Python", ex.Language)
			}
		}
	})

	t.Run("api", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"GET handler", "POST handler"}, titles(got[ir.CategoryAPI]))
	})

	t.Run("model", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"Order", "OrderModel"}, titles(got[ir.CategoryModel]))
	})

	t.Run("test", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"createOrder", "rejects missing users"}, titles(got[ir.CategoryTest]))
	})

	t.Run("config", func(t *testing.T) {
		require.Len(t, got[ir.CategoryConfig], 1)
		cfg := got[ir.CategoryConfig][0]
		assert.Equal(t, "vite.config.js", cfg.Title)
		assert.Equal(t, 1, cfg.StartLine)
		assert.Equal(t, 6, cfg.EndLine)
	})

	t.Run("util", func(t *testing.T) {
		assert.Equal(t, []string{"formatPrice"}, titles(got[ir.CategoryUtil]))
	})

	t.Run("sorted by score", func(t *testing.T) {
		for _, rule := range catalog.Categories {
			list := got[rule.Category]
			for i := 1; i < len(list); i++ {
				assert.GreaterOrEqual(t, Score(list[i-1], rule.Weight), Score(list[i], rule.Weight))
			}
		}
	})
}

func TestExtractor_RoundTrip(t *testing.T) {
	snap := buildSnapshot(t, shopRoot)
	got := NewExtractor(Options{MaxPerCategory: 5, Logger: zerolog.Nop()}).Extract(snap)

	for _, c := range ir.Categories {
		for _, ex := range got[c] {
			assert.GreaterOrEqual(t, ex.StartLine, 1)
			assert.LessOrEqual(t, ex.StartLine, ex.EndLine)

			data, err := os.ReadFile(filepath.Join(shopRoot, filepath.FromSlash(ex.FilePath)))
			require.NoError(t, err)
			assert.Equal(t, ex.Code, index.SliceLines(index.SplitLines(string(data)), ex.StartLine, ex.EndLine),
				"%s %s:%d-%d", c, ex.FilePath, ex.StartLine, ex.EndLine)
		}
	}
}

func TestExtractor_Deterministic(t *testing.T) {
	a := NewExtractor(Options{MaxPerCategory: 5, Logger: zerolog.Nop()}).Extract(buildSnapshot(t, shopRoot))
	b := NewExtractor(Options{MaxPerCategory: 5, Logger: zerolog.Nop()}).Extract(buildSnapshot(t, shopRoot))
	assert.Equal(t, a, b)
}

func TestExtractor_CapPerCategory(t *testing.T) {
	got := NewExtractor(Options{MaxPerCategory: 1, Logger: zerolog.Nop()}).Extract(buildSnapshot(t, shopRoot))
	for _, c := range ir.Categories {
		assert.LessOrEqual(t, len(got[c]), 1, c)
	}
}

func TestExtractor_EmptyRepository(t *testing.T) {
	got := NewExtractor(Options{MaxPerCategory: 5, Logger: zerolog.Nop()}).Extract(buildSnapshot(t, t.TempDir()))
	require.Len(t, got, len(ir.Categories))
	for _, c := range ir.Categories {
		assert.NotNil(t, got[c])
		assert.Empty(t, got[c])
	}
}

func TestBlockScanners(t *testing.T) {
	t.Run("braces", func(t *testing.T) {
		lines := index.SplitLines("func a() {\n\tif x {\n\t\treturn\n\t}\n}\nfunc b() {}\n")
		assert.Equal(t, 5, ScannerFor("a.go").BlockEnd(lines, 1))
		assert.Equal(t, 6, ScannerFor("a.go").BlockEnd(lines, 6))
	})

	t.Run("statement without braces", func(t *testing.T) {
		lines := index.SplitLines("const double = (x) => x * 2;\nfunction other() {\n  return 1\n}\n")
		assert.Equal(t, 1, ScannerFor("a.js").BlockEnd(lines, 1))
	})

	t.Run("indentation with decorator", func(t *testing.T) {
		lines := index.SplitLines("@app.get('/')\ndef index():\n    if ok:\n\n        return 1\nx = 2\n")
		assert.Equal(t, 5, ScannerFor("a.py").BlockEnd(lines, 1))
	})

	t.Run("ruby end", func(t *testing.T) {
		lines := index.SplitLines("def total\n  items.sum\nend\nputs 1\n")
		assert.Equal(t, 3, ScannerFor("a.rb").BlockEnd(lines, 1))
	})

	t.Run("capped", func(t *testing.T) {
		body := "function big() {\n" + strings.Repeat("  x++\n", 100) + "}\n"
		lines := index.SplitLines(body)
		assert.Equal(t, MaxBlockLines, ScannerFor("a.js").BlockEnd(lines, 1))
	})
}

func TestInteresting(t *testing.T) {
	assert.False(t, Interesting("ab", "if x { for {} }"))
	assert.False(t, Interesting("toString", "if x { for {} }"))
	assert.False(t, Interesting("render", "return 1"))
	assert.False(t, Interesting("render", "if a { if b {} }"), "one distinct token")
	assert.True(t, Interesting("render", "if a { for range xs {} }"))
	assert.False(t, Interesting("render", strings.Repeat(" ", 600)+"if for"), "tokens past the window")
}

func TestExampleID(t *testing.T) {
	a := ExampleID("function", "src/a.js", 1, 10)
	assert.Equal(t, a, ExampleID("function", "src/a.js", 1, 10))
	assert.NotEqual(t, a, ExampleID("function", "src/a.js", 2, 10))
	assert.NotEqual(t, a, ExampleID("api", "src/a.js", 1, 10))
	assert.Len(t, a, 36)
}

func TestBuild_ClampsRange(t *testing.T) {
	lines := []string{"a", "b", "c"}
	ex := Build(Excerpt{Path: "x.go", Lines: lines, Start: 0, End: 10}, "config", ir.CategoryConfig, "x", "")
	assert.Equal(t, 1, ex.StartLine)
	assert.Equal(t, 3, ex.EndLine)
	assert.Equal(t, "a\nb\nc", ex.Code)
	assert.Equal(t, "Go", ex.Language)
	assert.Equal(t, ir.ComplexitySimple, ex.Complexity)
}

func TestScore(t *testing.T) {
	ex := ir.CodeExample{StartLine: 1, EndLine: 35, Complexity: ir.ComplexityModerate, Patterns: []string{"A", "B"}}
	// tier 2 + 2 tags + length capped at 2 + weight 3
	assert.Equal(t, 9, Score(ex, 3))

	short := ir.CodeExample{StartLine: 1, EndLine: 9, Complexity: ir.ComplexitySimple}
	assert.Equal(t, 2, Score(short, 1))
}
