package structure

import (
	"os"
	"path/filepath"
	"testing"

	"codescope/internal/crawler"
	"codescope/internal/index"
	"codescope/internal/ir"
	"codescope/internal/manifest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(t *testing.T, files map[string]string) (*index.Snapshot, *manifest.Set) {
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

	var paths []string
	for _, f := range snap.Files {
		paths = append(paths, f.Path)
	}
	return snap, manifest.Load(snap, paths, zerolog.Nop())
}

func TestFileImportance(t *testing.T) {
	tests := []struct {
		path string
		want ir.Importance
	}{
		{"main.go", ir.ImportanceHigh},
		{"package.json", ir.ImportanceHigh},
		{"README.md", ir.ImportanceHigh},
		{"LICENSE", ir.ImportanceHigh},
		{".github/workflows/ci.yml", ir.ImportanceHigh},
		{"cmd/tool/main.go", ir.ImportanceHigh},
		{"src/api/users.ts", ir.ImportanceMedium},
		{"internal/handlers/user.go", ir.ImportanceMedium},
		{"pkg/store/store_test.go", ir.ImportanceMedium},
		{"tsconfig.json", ir.ImportanceMedium},
		{"scripts/notes.txt", ir.ImportanceLow},
		{"assets/logo.png", ir.ImportanceLow},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FileImportance(tt.path))
		})
	}
}

func TestAnnotateTree(t *testing.T) {
	file := func(p string) *ir.FileNode {
		return &ir.FileNode{Type: ir.NodeFile, Name: filepath.Base(p), Path: p}
	}
	root := &ir.FileNode{Type: ir.NodeDirectory, Name: "repo", Path: ".", Children: []*ir.FileNode{
		file("notes.txt"),
		file("README.md"),
		{Type: ir.NodeDirectory, Name: "misc", Path: "misc", Children: []*ir.FileNode{file("misc/main.go")}},
		{Type: ir.NodeDirectory, Name: "docs", Path: "docs", Children: []*ir.FileNode{file("docs/guide.md")}},
		{Type: ir.NodeDirectory, Name: "src", Path: "src"},
		{Type: ir.NodeDirectory, Name: "assets", Path: "assets", Children: []*ir.FileNode{file("assets/logo.png")}},
	}}

	got := AnnotateTree(root)

	var names []string
	for _, c := range got.Children {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"src", "docs", "misc", "assets", "README.md", "notes.txt"}, names)

	assert.Equal(t, ir.ImportanceHigh, got.Importance)
	assert.Equal(t, ir.ImportanceMedium, got.Children[2].Importance, "promoted by high child")
	assert.Equal(t, ir.ImportanceLow, got.Children[3].Importance)

	// The input tree is not modified.
	assert.Equal(t, "notes.txt", root.Children[0].Name)
	assert.Empty(t, root.Children[0].Importance)
	assert.Nil(t, AnnotateTree(nil))
}

func TestProjectType(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name: "backend",
			files: map[string]string{
				"package.json": `{"dependencies": {"express": "^4.18.2"}}`,
				"server.js":    "app.get('/', h)\n",
			},
			want: "backend",
		},
		{
			name: "fullstack",
			files: map[string]string{
				"package.json":    `{"dependencies": {"express": "^4.18.2", "react": "^18.2.0"}}`,
				"server.js":       "app.get('/', h)\n",
				"client/App.jsx":  "export default function App() {}\n",
				"client/main.jsx": "render(<App />)\n",
			},
			want: "fullstack",
		},
		{
			name: "mobile",
			files: map[string]string{
				"package.json":         `{"dependencies": {"react-native": "0.73.0"}}`,
				"ios/AppDelegate.m":    "// app\n",
				"android/settings.txt": "x\n",
			},
			want: "mobile",
		},
		{
			name:  "unknown",
			files: map[string]string{"notes.txt": "hello\n"},
			want:  "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, deps := snapshot(t, tt.files)
			assert.Equal(t, tt.want, ProjectType(snap, deps))
		})
	}
}

func TestArchitecture(t *testing.T) {
	t.Run("mvc", func(t *testing.T) {
		snap, deps := snapshot(t, map[string]string{
			"Gemfile":                        "gem 'rails', '~> 7.1'\n",
			"app/models/user.rb":             "class User\nend\n",
			"app/views/users/index.html.erb": "<h1>Users</h1>\n",
			"app/controllers/users.rb":       "class UsersController\nend\n",
		})
		assert.Equal(t, "mvc", Architecture(snap, deps))
	})

	t.Run("microservices", func(t *testing.T) {
		snap, deps := snapshot(t, map[string]string{
			"docker-compose.yml":      "services:\n  api:\n    build: ./services/api\n  worker:\n    build: ./services/worker\n  db:\n    image: postgres:16\n",
			"services/api/Dockerfile": "FROM golang:1.22\n",
		})
		assert.Equal(t, "microservices", Architecture(snap, deps))
	})

	t.Run("single indicator is not enough", func(t *testing.T) {
		snap, deps := snapshot(t, map[string]string{
			"internal/models/user.go": "package models\n",
		})
		assert.Equal(t, "monolith", Architecture(snap, deps))
	})
}

func TestBuildSystemsAndPackageManager(t *testing.T) {
	t.Run("go", func(t *testing.T) {
		snap, _ := snapshot(t, map[string]string{
			"go.mod":   "module example.com/x\n\ngo 1.22\n",
			"go.sum":   "",
			"Makefile": "build:\n\tgo build ./...\n",
		})
		assert.Equal(t, []string{"Go Modules", "Make"}, BuildSystems(snap))
		assert.Equal(t, "go modules", PackageManager(snap))
	})

	t.Run("deduplicated", func(t *testing.T) {
		snap, _ := snapshot(t, map[string]string{
			"build.gradle":         "plugins {}\n",
			"app/build.gradle.kts": "plugins {}\n",
		})
		assert.Equal(t, []string{"Gradle"}, BuildSystems(snap))
		assert.Equal(t, "gradle", PackageManager(snap))
	})

	t.Run("lock file wins", func(t *testing.T) {
		snap, _ := snapshot(t, map[string]string{
			"package.json": `{"name": "x"}`,
			"yarn.lock":    "# yarn lockfile v1\n",
		})
		assert.Equal(t, "yarn", PackageManager(snap))
	})

	t.Run("none", func(t *testing.T) {
		snap, _ := snapshot(t, map[string]string{"notes.txt": "x\n"})
		assert.Empty(t, BuildSystems(snap))
		assert.NotNil(t, BuildSystems(snap))
		assert.Equal(t, "unknown", PackageManager(snap))
	})
}

func TestDocumentation(t *testing.T) {
	a := New(zerolog.Nop(), 20)

	t.Run("excellent", func(t *testing.T) {
		snap, deps := snapshot(t, map[string]string{
			"README.md":          "# x\n",
			"CONTRIBUTING.md":    "pr welcome\n",
			"CHANGELOG.md":       "## 1.0\n",
			"LICENSE":            "MIT\n",
			"CODE_OF_CONDUCT.md": "be nice\n",
			"docs/index.md":      "# docs\n",
			"main.go":            "// Package main runs.\n// It is small.\n// Really.\npackage main\n\nfunc main() {}\n",
			"package.json":       `{"name": "x", "description": "A tool", "keywords": ["cli"]}`,
		})
		doc := a.Analyze(snap, deps).Documentation
		assert.Equal(t, 11, doc.Score)
		assert.Equal(t, "excellent", doc.Quality)
		assert.Contains(t, doc.Signals, "README")
		assert.Contains(t, doc.Signals, "docs directory")
	})

	tests := []struct {
		name  string
		files map[string]string
		score int
		want  string
	}{
		{"poor", map[string]string{"main.go": "package main\n"}, 0, "poor"},
		{"moderate", map[string]string{"README.md": "# x\n"}, 2, "moderate"},
		{"good", map[string]string{
			"README.md":       "# x\n",
			"LICENSE":         "MIT\n",
			"CONTRIBUTING.md": "x\n",
			"CHANGELOG.md":    "x\n",
		}, 5, "good"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, deps := snapshot(t, tt.files)
			doc := a.Analyze(snap, deps).Documentation
			assert.Equal(t, tt.score, doc.Score)
			assert.Equal(t, tt.want, doc.Quality)
		})
	}
}

func TestAnalyze_Inventory(t *testing.T) {
	snap, deps := snapshot(t, map[string]string{
		"cmd/tool/main.go":      "package main\n",
		"src/index.ts":          "export {}\n",
		"tsconfig.json":         "{}\n",
		"tests/unit/test_a.py":  "def test_a():\n    pass\n",
		"web/vite.config.ts":    "export default {}\n",
		"web/components/Nav.ts": "export {}\n",
	})
	s := New(zerolog.Nop(), 20).Analyze(snap, deps)

	assert.Equal(t, []string{"cmd/tool/main.go", "src/index.ts"}, s.EntryPoints)
	assert.Equal(t, []string{"tsconfig.json", "web/vite.config.ts"}, s.ConfigFiles)
	assert.Equal(t, []string{"tests"}, s.TestDirectories)
	assert.Equal(t, 6, s.TotalFiles)
	assert.Equal(t, 7, s.TotalDirectories)
}
