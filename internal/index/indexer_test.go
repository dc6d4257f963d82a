package index

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codescope/internal/crawler"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSnapshot(t *testing.T, files map[string]string, maxSize int64) *Snapshot {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	idx := NewIndexer(Options{
		Crawler:     crawler.Options{MaxDepth: 10, Logger: zerolog.Nop()},
		MaxFileSize: maxSize,
		CacheSize:   4,
	})
	snap, err := idx.Build(root)
	require.NoError(t, err)
	return snap
}

func TestSnapshot_ReadFile(t *testing.T) {
	snap := buildSnapshot(t, map[string]string{
		"src/app.js":  "const a = 1;\n",
		"big.txt":     strings.Repeat("x", 2048),
		"image.png":   "\x89PNG\x00\x00data",
		"lib/util.go": "package lib\n",
	}, 1024)

	t.Run("reads and caches", func(t *testing.T) {
		content, err := snap.ReadFile("src/app.js")
		require.NoError(t, err)
		assert.Equal(t, "const a = 1;\n", content)

		// Served from the cache even if the file disappears.
		require.NoError(t, os.Remove(filepath.Join(snap.Root, "src", "app.js")))
		again, err := snap.ReadFile("src/app.js")
		require.NoError(t, err)
		assert.Equal(t, content, again)
	})

	t.Run("oversized file", func(t *testing.T) {
		_, err := snap.ReadFile("big.txt")
		var fre *FileReadError
		require.True(t, errors.As(err, &fre))
		assert.Equal(t, "big.txt", fre.Path)
	})

	t.Run("binary file", func(t *testing.T) {
		_, err := snap.ReadFile("image.png")
		var fre *FileReadError
		assert.True(t, errors.As(err, &fre))
	})

	t.Run("unknown file", func(t *testing.T) {
		_, err := snap.ReadFile("missing.go")
		assert.Error(t, err)
	})
}

func TestSnapshot_Queries(t *testing.T) {
	snap := buildSnapshot(t, map[string]string{
		"cmd/api/main.go":        "package main\n",
		"web/src/App.tsx":        "export default function App() {}\n",
		"web/dist/bundle.min.js": "x\n",
		"README.md":              "# demo\n",
	}, 0)

	assert.True(t, snap.Has("README.md"))
	assert.True(t, snap.HasDir("web/src"))
	assert.True(t, snap.HasDir("cmd/"))
	assert.False(t, snap.HasDir("lib"))

	got := snap.Glob("**/*.go")
	require.Len(t, got, 1)
	assert.Equal(t, "cmd/api/main.go", got[0].Path)

	var sources []string
	for _, f := range snap.SourceFiles() {
		sources = append(sources, f.Path)
	}
	assert.Equal(t, []string{"cmd/api/main.go", "web/src/App.tsx"}, sources)

	match, ok := snap.AnyMatch("**/App.{jsx,tsx}")
	assert.True(t, ok)
	assert.Equal(t, "web/src/App.tsx", match)

	assert.Len(t, snap.FilesNamed("main.go", "README.md"), 2)
}

func TestSplitAndSliceLines(t *testing.T) {
	content := "one\r\ntwo\nthree\n"
	lines := SplitLines(content)
	require.Len(t, lines, 3)
	assert.Equal(t, "one\r", lines[0])

	assert.Equal(t, "two\nthree", SliceLines(lines, 2, 3))
	assert.Equal(t, "one\r\ntwo", SliceLines(lines, 0, 2))
	assert.Equal(t, "three", SliceLines(lines, 3, 99))
	assert.Equal(t, "", SliceLines(lines, 3, 2))
	assert.Nil(t, SplitLines(""))

	assert.Equal(t, 1, LineAt(content, 0))
	assert.Equal(t, 3, LineAt(content, strings.Index(content, "three")))
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "Go", Language("main.go"))
	assert.Equal(t, "TypeScript", Language("src/App.tsx"))
	assert.Equal(t, "", Language("LICENSE-unknown.zzz"))

	name, fam := LanguageFamily("script.py")
	assert.Equal(t, "Python", name)
	assert.Equal(t, FamilyDynamic, fam)

	assert.True(t, IsSource("a/b.rb"))
	assert.False(t, IsSource("types.d.ts"))
	assert.False(t, IsSource("notes.md"))

	assert.True(t, IsCommentLine("   // note", CommentSlash))
	assert.True(t, IsCommentLine(" * continued", CommentSlash))
	assert.True(t, IsCommentLine("# note", CommentHash))
	assert.False(t, IsCommentLine("#!/bin/sh", CommentHash))
	assert.False(t, IsCommentLine("x := 1", CommentSlash))
}

func TestSnapshot_ReadFileUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	snap := buildSnapshot(t, map[string]string{
		"src/locked.js": "const secret = 1;\n",
		"src/open.js":   "const a = 1;\n",
	}, 0)
	locked := filepath.Join(snap.Root, "src", "locked.js")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o644) })

	_, err := snap.ReadFile("src/locked.js")
	var fre *FileReadError
	require.True(t, errors.As(err, &fre))
	assert.Equal(t, "unreadable", fre.Reason)
	assert.True(t, errors.Is(err, os.ErrPermission))

	content, err := snap.ReadFile("src/open.js")
	require.NoError(t, err)
	assert.Equal(t, "const a = 1;\n", content)
}
