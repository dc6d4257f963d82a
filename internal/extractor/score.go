package extractor

import (
	"regexp"
	"sort"

	"codescope/internal/catalog"
	"codescope/internal/ir"
)

const (
	maxLengthPoints  = 2
	linesPerPoint    = 10
	interestWindow   = 500
	minInterestToken = 2
	minNameLength    = 3
)

var trivialNames = map[string]bool{
	"get":         true,
	"set":         true,
	"init":        true,
	"main":        true,
	"constructor": true,
	"toString":    true,
	"valueOf":     true,
	"String":      true,
	"Error":       true,
}

var interestingTokens = []*regexp.Regexp{
	regexp.MustCompile(`\bif\b`),
	regexp.MustCompile(`\bfor\b`),
	regexp.MustCompile(`\bwhile\b`),
	regexp.MustCompile(`\bswitch\b`),
	regexp.MustCompile(`\btry\b`),
	regexp.MustCompile(`\bcatch\b`),
	regexp.MustCompile(`\basync\b`),
	regexp.MustCompile(`\bawait\b`),
	regexp.MustCompile(`\.map\s*\(`),
	regexp.MustCompile(`\.filter\s*\(`),
	regexp.MustCompile(`\.reduce\s*\(`),
	regexp.MustCompile(`\.forEach\s*\(`),
	regexp.MustCompile(`\brange\b`),
	regexp.MustCompile(`\bselect\b`),
	regexp.MustCompile(`\bdefer\b`),
	regexp.MustCompile(`\bgo\s+func\b`),
	regexp.MustCompile(`\byield\b`),
	regexp.MustCompile(`\bPromise\b`),
}

// Interesting reports whether a function is worth showing: a non-trivial
// name and at least two distinct control-flow or collection tokens near the
// top of its body.
func Interesting(name, code string) bool {
	if len(name) < minNameLength || trivialNames[name] {
		return false
	}
	head := code
	if len(head) > interestWindow {
		head = head[:interestWindow]
	}
	hits := 0
	for _, tok := range interestingTokens {
		if tok.MatchString(head) {
			hits++
			if hits >= minInterestToken {
				return true
			}
		}
	}
	return false
}

// Tags lists the catalog patterns whose content matcher hits the code.
func Tags(patterns []catalog.Pattern, rel, code string) []string {
	tags := []string{}
	for _, p := range patterns {
		if p.Content == nil {
			continue
		}
		if p.File != nil && !p.File.MatchString(rel) {
			continue
		}
		if p.Content.MatchString(code) {
			tags = append(tags, p.Name)
		}
	}
	return tags
}

// Score ranks an example: complexity tier, one point per pattern tag, up to
// two points for length, plus the category weight.
func Score(ex ir.CodeExample, weight int) int {
	lines := ex.EndLine - ex.StartLine + 1
	length := lines / linesPerPoint
	if length > maxLengthPoints {
		length = maxLengthPoints
	}
	return ex.Complexity.Rank() + len(ex.Patterns) + length + weight
}

type scored struct {
	ex    ir.CodeExample
	score int
}

// rank sorts by descending score, then path, then start line, and keeps
// the first limit entries.
func rank(items []scored, limit int) []scored {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.ex.FilePath != b.ex.FilePath {
			return a.ex.FilePath < b.ex.FilePath
		}
		return a.ex.StartLine < b.ex.StartLine
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

func examples(items []scored) []ir.CodeExample {
	out := make([]ir.CodeExample, 0, len(items))
	for _, it := range items {
		out = append(out, it.ex)
	}
	return out
}
