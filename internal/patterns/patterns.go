// Package patterns counts the catalog's structural patterns across a
// repository and captures a few illustrative excerpts of each.
package patterns

import (
	"fmt"
	"sort"

	"codescope/internal/catalog"
	"codescope/internal/crawler"
	"codescope/internal/extractor"
	"codescope/internal/index"
	"codescope/internal/ir"

	"github.com/rs/zerolog"
)

const (
	// MaxExamples is the number of excerpts kept per pattern.
	MaxExamples = 3

	contextBefore = 5
	contextAfter  = 15
	fileHeadLines = 20
)

// Detector evaluates a pattern catalog over snapshots.
type Detector struct {
	log     zerolog.Logger
	catalog []catalog.Pattern
}

// New creates a detector. A nil catalog selects the built-in one.
func New(log zerolog.Logger, patterns []catalog.Pattern) *Detector {
	if patterns == nil {
		patterns = catalog.Patterns
	}
	return &Detector{log: log, catalog: patterns}
}

// Detect returns every pattern found at least once, most frequent first.
// Patterns with equal frequency keep catalog order.
func (d *Detector) Detect(snap *index.Snapshot) []ir.PatternDetection {
	files := snap.SourceFiles()
	out := []ir.PatternDetection{}
	for _, p := range d.catalog {
		det := d.evaluate(p, snap, files)
		if det.Frequency > 0 {
			out = append(out, det)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Frequency > out[j].Frequency })

	d.log.Debug().Int("patterns", len(out)).Int("files", len(files)).Msg("pattern detection complete")
	return out
}

// evaluate counts every content match across candidate files, or the
// candidate files themselves when the pattern has no content matcher.
func (d *Detector) evaluate(p catalog.Pattern, snap *index.Snapshot, files []crawler.File) ir.PatternDetection {
	det := ir.PatternDetection{
		Name:           p.Name,
		Description:    p.Description,
		Recommendation: p.Recommendation,
		Examples:       []ir.CodeExample{},
	}

	for _, f := range files {
		if p.File != nil && !p.File.MatchString(f.Path) {
			continue
		}

		if p.Content == nil {
			det.Frequency++
			if len(det.Examples) < MaxExamples {
				if ex, ok := d.excerpt(p, snap, f.Path, 1, fileHeadLines); ok {
					det.Examples = append(det.Examples, ex)
				}
			}
			continue
		}

		content, err := snap.ReadFile(f.Path)
		if err != nil {
			continue
		}
		matches := p.Content.FindAllStringIndex(content, -1)
		if len(matches) == 0 {
			continue
		}
		det.Frequency += len(matches)
		if len(det.Examples) < MaxExamples {
			line := index.LineAt(content, matches[0][0])
			if ex, ok := d.excerpt(p, snap, f.Path, line-contextBefore, line+contextAfter); ok {
				det.Examples = append(det.Examples, ex)
			}
		}
	}
	return det
}

func (d *Detector) excerpt(p catalog.Pattern, snap *index.Snapshot, rel string, start, end int) (ir.CodeExample, bool) {
	content, err := snap.ReadFile(rel)
	if err != nil {
		return ir.CodeExample{}, false
	}
	lines := index.SplitLines(content)
	if len(lines) == 0 {
		return ir.CodeExample{}, false
	}

	cat, ok := catalog.CategoryFor(rel)
	if !ok {
		cat = ir.CategoryFunction
	}
	ex := extractor.Build(
		extractor.Excerpt{Path: rel, Lines: lines, Start: start, End: end},
		"pattern:"+p.Name, cat,
		fmt.Sprintf("%s in %s", p.Name, rel),
		p.Description,
	)
	ex.Patterns = extractor.Tags(d.catalog, rel, ex.Code)
	if !contains(ex.Patterns, p.Name) {
		ex.Patterns = append([]string{p.Name}, ex.Patterns...)
	}
	return ex, true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
