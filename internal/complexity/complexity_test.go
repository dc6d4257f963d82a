package complexity

import (
	"strings"
	"testing"

	"codescope/internal/ir"

	"github.com/stretchr/testify/assert"
)

func TestTier_Thresholds(t *testing.T) {
	assert.Equal(t, ir.ComplexitySimple, Tier(15, 4))
	assert.Equal(t, ir.ComplexityModerate, Tier(16, 0))
	assert.Equal(t, ir.ComplexityModerate, Tier(1, 5))
	assert.Equal(t, ir.ComplexityComplex, Tier(41, 0))
	assert.Equal(t, ir.ComplexityComplex, Tier(1, 9))
}

func TestTier_Monotonic(t *testing.T) {
	for lines := 0; lines < 60; lines++ {
		for kw := 0; kw < 12; kw++ {
			base := Tier(lines, kw).Rank()
			assert.GreaterOrEqual(t, Tier(lines+1, kw).Rank(), base)
			assert.GreaterOrEqual(t, Tier(lines, kw+1).Rank(), base)
		}
	}
}

func TestCyclomatic(t *testing.T) {
	code := `func f(a, b int) int {
	if a > 0 && b > 0 {
		return 1
	}
	for i := 0; i < a; i++ {
		switch i {
		case 1:
		case 2:
		}
	}
	return 0
}`
	// if, &&, for, case, case
	assert.Equal(t, 6, Cyclomatic(code))
	assert.Equal(t, 1, Cyclomatic("return x"))
}

func TestCognitive_Nesting(t *testing.T) {
	flat := "if a {\n}\nif b {\n}\n"
	nested := "if a {\n  if b {\n  }\n}\n"
	assert.Equal(t, 2, Cognitive(flat))
	assert.Equal(t, 3, Cognitive(nested))

	assert.Equal(t, 2, Cognitive("if a && b {\n}\n"))

	python := "def f(x):\n    if x:\n        for y in x:\n            pass\nz = 1\nif z:\n    pass\n"
	// if at depth 0, for at depth 1, top-level if resets to depth 0.
	assert.Equal(t, 1+2+1, Cognitive(python))
}

func TestCognitive_UnbalancedBracesFloor(t *testing.T) {
	code := "}\n}\nif a {\n}\n"
	assert.Equal(t, 1, Cognitive(code))
}

func TestAssess(t *testing.T) {
	assert.Equal(t, ir.ComplexitySimple, Assess("x := 1"))
	long := strings.Repeat("x := 1\n", 50)
	assert.Equal(t, ir.ComplexityComplex, Assess(long))
	branches := strings.Repeat("if a {}\n", 5)
	assert.Equal(t, ir.ComplexityModerate, Assess(branches))
}
