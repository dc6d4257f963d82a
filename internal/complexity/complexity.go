// Package complexity scores code fragments with line-based heuristics.
// Nothing here parses syntax; keywords inside strings and comments count too.
package complexity

import (
	"regexp"
	"strings"

	"codescope/internal/ir"
)

var (
	branchKeyword  = regexp.MustCompile(`\b(?:if|for|while|case|catch|except|elif|foreach)\b`)
	logicalOp      = regexp.MustCompile(`&&|\|\|`)
	controlKeyword = regexp.MustCompile(`\b(?:if|for|while|switch|catch|except|elif|foreach|select)\b`)
)

// Tier thresholds.
const (
	complexLines    = 40
	complexKeywords = 8
	moderateLines   = 15
	moderateKeyword = 4
)

// DecisionPoints counts branching, looping and logical-operator occurrences.
func DecisionPoints(code string) int {
	return len(branchKeyword.FindAllStringIndex(code, -1)) + len(logicalOp.FindAllStringIndex(code, -1))
}

// Cyclomatic approximates cyclomatic complexity as decision points plus one.
func Cyclomatic(code string) int {
	return DecisionPoints(code) + 1
}

// Tier assigns a complexity tier from a line count and a keyword count.
// It is monotonic in both arguments.
func Tier(lines, keywords int) ir.Complexity {
	switch {
	case lines > complexLines || keywords > complexKeywords:
		return ir.ComplexityComplex
	case lines > moderateLines || keywords > moderateKeyword:
		return ir.ComplexityModerate
	default:
		return ir.ComplexitySimple
	}
}

// Assess tiers a code fragment using its line count and cyclomatic score.
func Assess(code string) ir.Complexity {
	lines := strings.Count(code, "\n") + 1
	if code == "" {
		lines = 0
	}
	return Tier(lines, Cyclomatic(code))
}

// Cognitive approximates cognitive complexity. Every control keyword adds one
// plus the current nesting depth and every logical operator adds one. Depth
// follows braces; a control line without an opening brace (Python, Ruby)
// nests until the next non-blank line starting at column zero.
func Cognitive(code string) int {
	score := 0
	braceDepth := 0
	looseDepth := 0

	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if looseDepth > 0 && line[0] != ' ' && line[0] != '\t' && !strings.HasPrefix(trimmed, "}") {
			looseDepth = 0
		}

		keywords := len(controlKeyword.FindAllStringIndex(line, -1))
		for i := 0; i < keywords; i++ {
			score += 1 + braceDepth + looseDepth
		}
		score += len(logicalOp.FindAllStringIndex(line, -1))

		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")
		if keywords > 0 && opens == 0 && strings.HasSuffix(trimmed, ":") {
			looseDepth++
		}
		braceDepth += opens - closes
		if braceDepth < 0 {
			braceDepth = 0
		}
	}
	return score
}
