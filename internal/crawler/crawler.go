package crawler

import (
	"bufio"
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strings"

	"codescope/internal/ir"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/rs/zerolog"
)

// Options controls which entries the crawler visits.
type Options struct {
	MaxDepth         int
	IgnorePatterns   []string
	RespectGitignore bool
	Logger           zerolog.Logger
}

// File is a regular file found during the walk.
type File struct {
	Path    string // slash-separated, relative to root
	AbsPath string
	Ext     string // lower-case, with leading dot
	Size    int64
	Depth   int
}

// Result is the outcome of a single walk.
type Result struct {
	Tree  *ir.FileNode
	Files []File
	Dirs  []string
}

// Crawler walks a directory tree into FileNodes.
type Crawler struct {
	opts    Options
	globs   []string
	literal []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler(opts Options) *Crawler {
	c := &Crawler{opts: opts}
	for _, p := range opts.IgnorePatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			c.globs = append(c.globs, p)
		} else {
			c.literal = append(c.literal, strings.Trim(p, "/"))
		}
	}
	return c
}

// Walk enumerates root up to MaxDepth. Entries are visited in name order, so
// two walks of an unchanged tree produce identical results. Unreadable
// entries and symlinks are skipped.
func (c *Crawler) Walk(root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}

	w := &walk{Crawler: c, root: root, res: &Result{}}
	if c.opts.RespectGitignore {
		w.gitignore = loadGitignore(root)
	}

	tree := &ir.FileNode{
		Type: ir.NodeDirectory,
		Name: info.Name(),
		Path: ".",
	}
	w.dir(tree, root, "", 1)
	w.res.Tree = tree
	return w.res, nil
}

// Ignored reports whether a relative path is excluded by the ignore patterns.
func (c *Crawler) Ignored(rel string) bool {
	base := path.Base(rel)
	for _, g := range c.globs {
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	for _, lit := range c.literal {
		if strings.Contains(lit, "/") {
			if strings.Contains(rel, lit) {
				return true
			}
			continue
		}
		for _, seg := range strings.Split(rel, "/") {
			if seg == lit {
				return true
			}
		}
	}
	return false
}

type walk struct {
	*Crawler
	root      string
	gitignore gitignore.Matcher
	res       *Result
}

func (w *walk) dir(node *ir.FileNode, abs, rel string, depth int) {
	if w.opts.MaxDepth > 0 && depth > w.opts.MaxDepth {
		return
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		w.opts.Logger.Debug().Err(err).Str("path", abs).Msg("skipping unreadable directory")
		return
	}

	for _, e := range entries {
		if e.Type()&os.ModeSymlink != 0 {
			continue
		}

		childRel := e.Name()
		if rel != "" {
			childRel = rel + "/" + e.Name()
		}
		if w.Ignored(childRel) || w.gitIgnored(childRel, e.IsDir()) {
			continue
		}

		childAbs := filepath.Join(abs, e.Name())
		if e.IsDir() {
			child := &ir.FileNode{Type: ir.NodeDirectory, Name: e.Name(), Path: childRel}
			w.res.Dirs = append(w.res.Dirs, childRel)
			w.dir(child, childAbs, childRel, depth+1)
			node.Children = append(node.Children, child)
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		node.Children = append(node.Children, &ir.FileNode{
			Type: ir.NodeFile,
			Name: e.Name(),
			Path: childRel,
			Size: info.Size(),
		})
		w.res.Files = append(w.res.Files, File{
			Path:    childRel,
			AbsPath: childAbs,
			Ext:     strings.ToLower(filepath.Ext(e.Name())),
			Size:    info.Size(),
			Depth:   depth,
		})
	}
}

func (w *walk) gitIgnored(rel string, isDir bool) bool {
	if w.gitignore == nil {
		return false
	}
	return w.gitignore.Match(strings.Split(rel, "/"), isDir)
}

func loadGitignore(root string) gitignore.Matcher {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}

	var patterns []gitignore.Pattern
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.NewMatcher(patterns)
}
