// Package quality computes size, comment, complexity and duplication
// metrics over a sample of a repository's source files.
package quality

import (
	"math"
	"regexp"
	"strings"

	"codescope/internal/complexity"
	"codescope/internal/index"
	"codescope/internal/ir"

	"github.com/rs/zerolog"
)

const (
	// WindowLines is the height of a duplicate-detection window.
	WindowLines = 5

	minWindowChars    = 50
	maxWindowComments = 3
)

// token matches, in priority order, quoted strings, numeric literals and
// identifiers. Keywords are identifiers too.
var token = regexp.MustCompile("\"(?:[^\"\\\\]|\\\\.)*\"|'(?:[^'\\\\]|\\\\.)*'|`[^`]*`|\\b\\d[\\w.]*|[A-Za-z_$][\\w$]*")

var spaces = regexp.MustCompile(`\s+`)

// Calculator measures sampled source files.
type Calculator struct {
	log         zerolog.Logger
	sampleLimit int
}

// New creates a calculator that reads at most sampleLimit files.
// A non-positive limit means no limit.
func New(log zerolog.Logger, sampleLimit int) *Calculator {
	return &Calculator{log: log, sampleLimit: sampleLimit}
}

type totals struct {
	files      int
	bytes      int
	lines      int
	comments   int
	cyclomatic int
	cognitive  int
}

// Calculate walks source files in path order. Unreadable and oversized
// files are skipped and do not count toward the sample.
func (c *Calculator) Calculate(snap *index.Snapshot) ir.CodeQualityMetrics {
	var t totals
	dups := newDuplicates()

	for _, f := range snap.SourceFiles() {
		if c.sampleLimit > 0 && t.files >= c.sampleLimit {
			break
		}
		content, err := snap.ReadFile(f.Path)
		if err != nil {
			c.log.Debug().Err(err).Str("path", f.Path).Msg("skipping quality sample")
			continue
		}

		lines := index.SplitLines(content)
		style := index.CommentStyleOf(f.Path)
		comment := make([]bool, len(lines))
		for i, line := range lines {
			if index.IsCommentLine(line, style) {
				comment[i] = true
				t.comments++
			}
		}

		t.files++
		t.bytes += len(content)
		t.lines += len(lines)
		t.cyclomatic += complexity.Cyclomatic(content)
		t.cognitive += complexity.Cognitive(content)
		dups.scan(lines, comment)
	}

	m := metrics(t, dups.percentage(t.lines))
	c.log.Debug().
		Int("files", m.FilesAnalyzed).
		Int("lines", m.TotalLines).
		Float64("maintainability", m.MaintainabilityIndex).
		Float64("duplication", m.DuplicateCodePercentage).
		Msg("quality metrics computed")
	return m
}

func metrics(t totals, duplication float64) ir.CodeQualityMetrics {
	if t.files == 0 {
		return ir.CodeQualityMetrics{MaintainabilityIndex: 100}
	}

	n := float64(t.files)
	var ratio float64
	if t.lines > 0 {
		ratio = float64(t.comments) / float64(t.lines)
	}
	cyclomatic := float64(t.cyclomatic) / n
	cognitive := float64(t.cognitive) / n

	return ir.CodeQualityMetrics{
		FilesAnalyzed:   t.files,
		AverageFileSize: round(float64(t.bytes) / n),
		TotalLines:      t.lines,
		CommentRatio:    round(ratio),
		Complexity: ir.ComplexityScores{
			Cyclomatic: round(cyclomatic),
			Cognitive:  round(cognitive),
		},
		MaintainabilityIndex:    round(MaintainabilityIndex(cyclomatic, cognitive, ratio)),
		DuplicateCodePercentage: round(duplication),
	}
}

// MaintainabilityIndex blends average complexity and comment density into
// a score clamped to [0, 100].
func MaintainabilityIndex(avgCyclomatic, avgCognitive, commentRatio float64) float64 {
	return clamp(100 - 2*avgCyclomatic - 1.5*avgCognitive + 10*commentRatio)
}

// duplicates counts normalized windows across every scanned file.
type duplicates struct {
	seen map[string]int
}

func newDuplicates() *duplicates {
	return &duplicates{seen: map[string]int{}}
}

func (d *duplicates) scan(lines []string, comment []bool) {
	for start := 0; start+WindowLines <= len(lines); start++ {
		window := lines[start : start+WindowLines]
		chars, comments := 0, 0
		for i, line := range window {
			chars += len(strings.TrimSpace(line))
			if comment[start+i] {
				comments++
			}
		}
		if chars < minWindowChars || comments >= maxWindowComments {
			continue
		}
		d.seen[Normalize(strings.Join(window, "\n"))]++
	}
}

// percentage sums the occurrence counts of every repeated window, first
// occurrence included, relative to totalLines. Overlapping windows each
// count, so highly repetitive code can reach the 100 ceiling.
func (d *duplicates) percentage(totalLines int) float64 {
	if totalLines == 0 {
		return 0
	}
	sum := 0
	for _, n := range d.seen {
		if n >= 2 {
			sum += n
		}
	}
	return clamp(100 * float64(sum) / float64(totalLines))
}

// Normalize replaces strings, numbers and identifiers with placeholders and
// collapses whitespace, so renamed copies of a block compare equal.
func Normalize(text string) string {
	out := token.ReplaceAllStringFunc(text, func(tok string) string {
		switch c := tok[0]; {
		case c == '"' || c == '\'' || c == '`':
			return "\x01"
		case c >= '0' && c <= '9':
			return "\x02"
		default:
			return "\x03"
		}
	})
	return strings.TrimSpace(spaces.ReplaceAllString(out, " "))
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
