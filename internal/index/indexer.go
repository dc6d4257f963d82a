package index

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"codescope/internal/crawler"
	"codescope/internal/ir"

	"github.com/bmatcuk/doublestar/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const defaultCacheSize = 512

// FileReadError reports a file that could not be used for content analysis.
// Callers skip the file and continue.
type FileReadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("read %s: %s", e.Path, e.Reason)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// Options configures snapshot construction.
type Options struct {
	Crawler     crawler.Options
	MaxFileSize int64
	CacheSize   int
}

// Snapshot is an immutable view of a walked repository shared by all stages.
// ReadFile is safe for concurrent use.
type Snapshot struct {
	Root    string
	Tree    *ir.FileNode
	Files   []crawler.File
	Dirs    []string
	maxSize int64
	byPath  map[string]int
	dirSet  map[string]bool
	cache   *lru.Cache[string, string]
	log     zerolog.Logger
}

// Indexer walks repositories into snapshots.
type Indexer struct {
	crawler *crawler.Crawler
	opts    Options
}

// NewIndexer creates a new indexer.
func NewIndexer(opts Options) *Indexer {
	return &Indexer{
		crawler: crawler.NewCrawler(opts.Crawler),
		opts:    opts,
	}
}

// Build walks root and returns its snapshot.
func (i *Indexer) Build(root string) (*Snapshot, error) {
	res, err := i.crawler.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}
	return NewSnapshot(root, res, i.opts)
}

// NewSnapshot wraps an existing walk result.
func NewSnapshot(root string, res *crawler.Result, opts Options) (*Snapshot, error) {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("content cache: %w", err)
	}

	s := &Snapshot{
		Root:    root,
		Tree:    res.Tree,
		Files:   res.Files,
		Dirs:    res.Dirs,
		maxSize: opts.MaxFileSize,
		byPath:  make(map[string]int, len(res.Files)),
		dirSet:  make(map[string]bool, len(res.Dirs)),
		cache:   cache,
		log:     opts.Crawler.Logger,
	}
	sort.Slice(s.Files, func(a, b int) bool { return s.Files[a].Path < s.Files[b].Path })
	sort.Strings(s.Dirs)
	for idx, f := range s.Files {
		s.byPath[f.Path] = idx
	}
	for _, d := range s.Dirs {
		s.dirSet[d] = true
	}
	return s, nil
}

// ReadFile returns the content of a snapshot file. Oversized, binary and
// unreadable files yield a *FileReadError.
func (s *Snapshot) ReadFile(rel string) (string, error) {
	if content, ok := s.cache.Get(rel); ok {
		return content, nil
	}

	idx, ok := s.byPath[rel]
	if !ok {
		return "", &FileReadError{Path: rel, Reason: "not in snapshot"}
	}
	f := s.Files[idx]
	if s.maxSize > 0 && f.Size > s.maxSize {
		return "", &FileReadError{Path: rel, Reason: fmt.Sprintf("larger than %d bytes", s.maxSize)}
	}

	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		s.log.Debug().Err(err).Str("path", rel).Msg("skipping unreadable file")
		return "", &FileReadError{Path: rel, Reason: "unreadable", Err: err}
	}
	if isBinary(data) {
		return "", &FileReadError{Path: rel, Reason: "binary content"}
	}

	content := string(data)
	s.cache.Add(rel, content)
	return content, nil
}

func isBinary(data []byte) bool {
	head := data
	if len(head) > 8000 {
		head = head[:8000]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// Has reports whether a file exists at rel.
func (s *Snapshot) Has(rel string) bool {
	_, ok := s.byPath[rel]
	return ok
}

// HasDir reports whether a directory exists at rel.
func (s *Snapshot) HasDir(rel string) bool {
	return s.dirSet[strings.Trim(rel, "/")]
}

// File returns the walker record for rel.
func (s *Snapshot) File(rel string) (crawler.File, bool) {
	idx, ok := s.byPath[rel]
	if !ok {
		return crawler.File{}, false
	}
	return s.Files[idx], true
}

// Glob returns snapshot files matching a doublestar pattern, in path order.
func (s *Snapshot) Glob(pattern string) []crawler.File {
	var out []crawler.File
	for _, f := range s.Files {
		if ok, _ := doublestar.Match(pattern, f.Path); ok {
			out = append(out, f)
		}
	}
	return out
}

// AnyMatch reports whether any file matches one of the patterns.
func (s *Snapshot) AnyMatch(patterns ...string) (string, bool) {
	for _, f := range s.Files {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, f.Path); ok {
				return f.Path, true
			}
		}
	}
	return "", false
}

// SourceFiles returns the files recognised as program source, in path order.
func (s *Snapshot) SourceFiles() []crawler.File {
	var out []crawler.File
	for _, f := range s.Files {
		if IsSource(f.Path) {
			out = append(out, f)
		}
	}
	return out
}

// FilesNamed returns files whose base name equals one of names.
func (s *Snapshot) FilesNamed(names ...string) []crawler.File {
	var out []crawler.File
	for _, f := range s.Files {
		base := path.Base(f.Path)
		for _, n := range names {
			if base == n {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
