// Package extractor selects representative code examples for each example
// category and ranks them.
package extractor

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"codescope/internal/catalog"
	"codescope/internal/complexity"
	"codescope/internal/index"
	"codescope/internal/ir"

	"github.com/rs/zerolog"
)

const (
	configExcerptLines = 30
	// maxPerFile keeps one large file from filling a whole category.
	maxPerFile = 2
)

var categoryLabels = map[ir.Category]string{
	ir.CategoryComponent: "Component",
	ir.CategoryFunction:  "Function",
	ir.CategoryTest:      "Test",
	ir.CategoryConfig:    "Configuration",
	ir.CategoryAPI:       "API handler",
	ir.CategoryModel:     "Data model",
	ir.CategoryUtil:      "Utility",
}

// Options configures an Extractor.
type Options struct {
	MaxPerCategory int
	Logger         zerolog.Logger
}

// Extractor selects code examples from a snapshot.
type Extractor struct {
	opts     Options
	rules    []catalog.CategoryRule
	patterns []catalog.Pattern
}

// NewExtractor creates an extractor over the built-in category and pattern catalogs.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{
		opts:     opts,
		rules:    catalog.Categories,
		patterns: catalog.Patterns,
	}
}

// Extract returns the ranked examples of every category. Every category key
// is present; categories without candidates map to an empty list.
func (e *Extractor) Extract(snap *index.Snapshot) map[ir.Category][]ir.CodeExample {
	out := make(map[ir.Category][]ir.CodeExample, len(ir.Categories))
	for _, c := range ir.Categories {
		out[c] = []ir.CodeExample{}
	}

	for _, rule := range e.rules {
		var items []scored
		for _, f := range snap.Files {
			if !rule.Matches(f.Path) {
				continue
			}
			content, err := snap.ReadFile(f.Path)
			if err != nil {
				e.opts.Logger.Debug().Err(err).Str("category", string(rule.Category)).Msg("skipping example candidate")
				continue
			}
			items = append(items, e.fromFile(rule, f.Path, content)...)
		}
		out[rule.Category] = examples(rank(items, e.opts.MaxPerCategory))
		e.opts.Logger.Debug().
			Str("category", string(rule.Category)).
			Int("candidates", len(items)).
			Int("kept", len(out[rule.Category])).
			Msg("examples extracted")
	}
	return out
}

type symbolHit struct {
	line int
	name string
}

func (e *Extractor) fromFile(rule catalog.CategoryRule, rel, content string) []scored {
	lines := index.SplitLines(content)
	if len(lines) == 0 {
		return nil
	}
	label := categoryLabels[rule.Category]

	if rule.Name == nil || catalog.MatchAny(rule.Excerpt, rel) {
		limit := MaxBlockLines
		if rule.Category == ir.CategoryConfig {
			limit = configExcerptLines
		}
		ex := e.build(Excerpt{Path: rel, Lines: lines, Start: 1, End: limit}, rule.Category,
			path.Base(rel), fmt.Sprintf("%s from %s", label, rel))
		return []scored{{ex: ex, score: Score(ex, rule.Weight)}}
	}

	scanner := ScannerFor(rel)
	var items []scored
	for _, hit := range symbolHits(rule.Name, content) {
		end := scanner.BlockEnd(lines, hit.line)
		ex := e.build(Excerpt{Path: rel, Lines: lines, Start: hit.line, End: end}, rule.Category,
			symbolTitle(rule.Category, hit.name), fmt.Sprintf("%s %s defined in %s", label, hit.name, rel))
		if rule.Filter && !Interesting(hit.name, ex.Code) {
			continue
		}
		items = append(items, scored{ex: ex, score: Score(ex, rule.Weight)})
	}
	return rank(items, maxPerFile)
}

// symbolHits finds declaration lines, one per line, in line order. The
// symbol name is the first non-empty capture group.
func symbolHits(res []*regexp.Regexp, content string) []symbolHit {
	seen := map[int]bool{}
	var hits []symbolHit
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			line := index.LineAt(content, m[0])
			if seen[line] {
				continue
			}
			seen[line] = true
			hits = append(hits, symbolHit{line: line, name: firstGroup(content, m)})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].line < hits[j].line })
	return hits
}

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// symbolTitle names route registrations by their HTTP method.
func symbolTitle(cat ir.Category, name string) string {
	if upper := strings.ToUpper(name); cat == ir.CategoryAPI && httpMethods[upper] {
		return upper + " handler"
	}
	return name
}

func firstGroup(content string, m []int) string {
	for g := 1; 2*g+1 < len(m); g++ {
		if m[2*g] >= 0 && m[2*g+1] > m[2*g] {
			return content[m[2*g]:m[2*g+1]]
		}
	}
	return strings.TrimSpace(content[m[0]:m[1]])
}

// Excerpt is a line range of one file.
type Excerpt struct {
	Path  string
	Lines []string
	Start int
	End   int
}

func (e *Extractor) build(x Excerpt, cat ir.Category, title, description string) ir.CodeExample {
	ex := Build(x, string(cat), cat, title, description)
	ex.Patterns = Tags(e.patterns, x.Path, ex.Code)
	return ex
}

// Build turns an excerpt into a CodeExample. The range is clamped to the
// file, so Code is always exactly lines StartLine..EndLine. idKind scopes the
// deterministic ID. Patterns is left empty for the caller to fill.
func Build(x Excerpt, idKind string, cat ir.Category, title, description string) ir.CodeExample {
	start, end := x.Start, x.End
	if start > len(x.Lines) {
		start = len(x.Lines)
	}
	if start < 1 {
		start = 1
	}
	if end > len(x.Lines) {
		end = len(x.Lines)
	}
	if end < start {
		end = start
	}
	code := index.SliceLines(x.Lines, start, end)
	return ir.CodeExample{
		ID:          ExampleID(idKind, x.Path, start, end),
		Title:       title,
		Description: description,
		FilePath:    x.Path,
		StartLine:   start,
		EndLine:     end,
		Code:        code,
		Language:    index.Language(x.Path),
		Category:    cat,
		Complexity:  complexity.Assess(code),
		Patterns:    []string{},
	}
}
