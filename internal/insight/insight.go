// Package insight turns a finished analysis into short qualitative
// observations. It reads nothing from disk.
package insight

import (
	"fmt"
	"strings"

	"codescope/internal/detector"
	"codescope/internal/ir"
)

// DefaultLimit caps each bucket when no limit is configured.
const DefaultLimit = 5

// Bucket names an insight list.
type Bucket int

const (
	Strength Bucket = iota
	Improvement
	Opportunity
	Risk
)

// facts are the derived values rules are written against.
type facts struct {
	a          *ir.CodebaseAnalysis
	q          ir.CodeQualityMetrics
	tools      []string
	techs      map[string]bool
	patterns   map[string]bool
	hasSource  bool
	hasTests   bool
	linters    []string
	ciSystems  []string
	testTools  []string
	serverSide bool
}

type rule struct {
	bucket  Bucket
	when    func(f *facts) bool
	message func(f *facts) string
}

func text(s string) func(*facts) string {
	return func(*facts) string { return s }
}

// rules are evaluated in order; earlier rules win when a bucket is full.
var rules = []rule{
	// Strengths.
	{Strength, func(f *facts) bool { return f.hasSource && f.q.CommentRatio > 0.15 },
		func(f *facts) string {
			return fmt.Sprintf("Well commented code: %.0f%% of sampled lines are comments", f.q.CommentRatio*100)
		}},
	{Strength, func(f *facts) bool { return f.hasSource && f.q.MaintainabilityIndex >= 80 },
		func(f *facts) string {
			return fmt.Sprintf("High maintainability index (%.0f/100)", f.q.MaintainabilityIndex)
		}},
	{Strength, func(f *facts) bool { return len(f.testTools) > 0 },
		func(f *facts) string { return "Automated tests with " + strings.Join(f.testTools, ", ") }},
	{Strength, func(f *facts) bool { return len(f.ciSystems) > 0 },
		func(f *facts) string { return "Continuous integration via " + strings.Join(f.ciSystems, ", ") }},
	{Strength, func(f *facts) bool {
		q := f.a.Structure.Documentation.Quality
		return q == "good" || q == "excellent"
	}, func(f *facts) string { return "Documentation rated " + f.a.Structure.Documentation.Quality }},
	{Strength, func(f *facts) bool { return len(f.linters) > 0 },
		func(f *facts) string { return "Linting enforced with " + strings.Join(f.linters, ", ") }},
	{Strength, func(f *facts) bool { return detector.HasTag(f.tools, detector.TagTypes) },
		text("Static typing catches errors before runtime")},
	{Strength, func(f *facts) bool { return f.hasSource && f.q.FilesAnalyzed >= 5 && f.q.DuplicateCodePercentage < 3 },
		text("Little duplicated code")},

	// Improvements.
	{Improvement, func(f *facts) bool { return f.q.DuplicateCodePercentage > 10 },
		func(f *facts) string {
			return fmt.Sprintf("Reduce duplicated code (%.1f%% of lines sit in repeated blocks)", f.q.DuplicateCodePercentage)
		}},
	{Improvement, func(f *facts) bool { return f.hasSource && f.q.CommentRatio < 0.05 },
		text("Add comments to explain non-obvious logic")},
	{Improvement, func(f *facts) bool { return f.q.Complexity.Cyclomatic > 10 },
		func(f *facts) string {
			return fmt.Sprintf("Split large files with many branches (average cyclomatic complexity %.1f)", f.q.Complexity.Cyclomatic)
		}},
	{Improvement, func(f *facts) bool {
		q := f.a.Structure.Documentation.Quality
		return q == "poor" || q == "moderate"
	}, text("Expand the README and project documentation")},
	{Improvement, func(f *facts) bool { return f.hasSource && !f.hasTests },
		text("Add automated tests")},

	// Opportunities.
	{Opportunity, func(f *facts) bool { return f.hasSource && len(f.linters) == 0 },
		text("Adopt a linter to enforce a consistent style")},
	{Opportunity, func(f *facts) bool { return f.hasSource && len(f.ciSystems) == 0 },
		text("Set up continuous integration to run tests on every change")},
	{Opportunity, func(f *facts) bool { return f.hasSource && !detector.HasTag(f.tools, detector.TagFormatter) },
		text("Use an automatic code formatter")},
	{Opportunity, func(f *facts) bool { return f.serverSide && !detector.HasTag(f.tools, detector.TagContainer) },
		text("Containerize the service for reproducible deployments")},
	{Opportunity, func(f *facts) bool { return f.serverSide && !f.patterns["Structured Logging"] },
		text("Introduce structured logging")},
	{Opportunity, func(f *facts) bool { return f.techs["JavaScript"] && !f.techs["TypeScript"] },
		text("Consider TypeScript for static type checking")},

	// Risks.
	{Risk, func(f *facts) bool { return f.hasSource && f.q.MaintainabilityIndex < 50 },
		func(f *facts) string {
			return fmt.Sprintf("Low maintainability index (%.0f/100)", f.q.MaintainabilityIndex)
		}},
	{Risk, func(f *facts) bool { return f.q.DuplicateCodePercentage > 20 },
		text("Heavy duplication makes fixes easy to miss")},
	{Risk, func(f *facts) bool { return f.hasSource && !f.hasTests },
		text("No automated tests detected; regressions may go unnoticed")},
	{Risk, func(f *facts) bool { return f.q.Complexity.Cognitive > 30 },
		text("Deeply nested control flow is hard to follow")},
	{Risk, func(f *facts) bool { return f.a.Structure.Architecture == "microservices" && len(f.ciSystems) == 0 },
		text("Multiple services without CI risk drifting out of sync")},
}

// Synthesize evaluates the rule table against a. Every bucket holds at most
// limit messages; a non-positive limit selects DefaultLimit.
func Synthesize(a *ir.CodebaseAnalysis, limit int) ir.Insights {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := ir.Insights{
		Strengths:     []string{},
		Improvements:  []string{},
		Opportunities: []string{},
		Risks:         []string{},
	}
	if a == nil {
		return out
	}

	f := derive(a)
	buckets := map[Bucket]*[]string{
		Strength:    &out.Strengths,
		Improvement: &out.Improvements,
		Opportunity: &out.Opportunities,
		Risk:        &out.Risks,
	}
	for _, r := range rules {
		list := buckets[r.bucket]
		if len(*list) >= limit || !r.when(f) {
			continue
		}
		*list = append(*list, r.message(f))
	}
	return out
}

func derive(a *ir.CodebaseAnalysis) *facts {
	t := a.Technologies
	f := &facts{
		a:         a,
		q:         a.Quality,
		tools:     detector.Names(t.Tools),
		techs:     toSet(detector.Names(t.Languages, t.Frameworks, t.Datastores, t.Tools)),
		patterns:  map[string]bool{},
		hasSource: a.Quality.FilesAnalyzed > 0,
	}
	for _, p := range a.Patterns {
		f.patterns[p.Name] = true
	}
	for _, name := range f.tools {
		single := []string{name}
		switch {
		case detector.HasTag(single, detector.TagLinter):
			f.linters = append(f.linters, name)
		case detector.HasTag(single, detector.TagCI):
			f.ciSystems = append(f.ciSystems, name)
		case detector.HasTag(single, detector.TagTesting):
			f.testTools = append(f.testTools, name)
		}
	}
	f.hasTests = len(f.testTools) > 0 || len(a.Structure.TestDirectories) > 0 || f.patterns["Unit Tests"]

	switch a.Structure.ProjectType {
	case "backend", "fullstack":
		f.serverSide = true
	}
	return f
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[item] = true
	}
	return out
}
