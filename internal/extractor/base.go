package extractor

import (
	"path"
	"strings"
)

// MaxBlockLines caps the length of an extracted block.
const MaxBlockLines = 60

// braceLookahead is how many lines after a declaration may hold its opening brace.
const braceLookahead = 10

// BlockScanner finds the extent of a code block.
type BlockScanner interface {
	// BlockEnd returns the last line (1-based) of the block declared at start.
	// The result is at least start and at most start+MaxBlockLines-1.
	BlockEnd(lines []string, start int) int
}

// ScannerFor picks the block scanner for a file's language.
func ScannerFor(rel string) BlockScanner {
	switch strings.ToLower(path.Ext(rel)) {
	case ".py", ".rb", ".ex", ".exs", ".yml", ".yaml":
		return indentScanner{}
	default:
		return braceScanner{}
	}
}

type braceScanner struct{}

func (braceScanner) BlockEnd(lines []string, start int) int {
	limit := blockLimit(lines, start)
	depth := 0
	opened := false
	for i := start; i <= limit; i++ {
		line := lines[i-1]
		for _, r := range line {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
		if !opened && strings.HasSuffix(strings.TrimSpace(line), ";") {
			return i
		}
		if !opened && i-start >= braceLookahead {
			return start
		}
	}
	if !opened {
		return start
	}
	return limit
}

type indentScanner struct{}

func (indentScanner) BlockEnd(lines []string, start int) int {
	limit := blockLimit(lines, start)
	base := indentOf(lines[start-1])

	header := start
	for header < limit && strings.HasPrefix(strings.TrimSpace(lines[header-1]), "@") {
		header++
	}

	end := header
	for i := header + 1; i <= limit; i++ {
		line := lines[i-1]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentOf(line) <= base {
			if strings.TrimSpace(line) == "end" && indentOf(line) == base {
				end = i
			}
			break
		}
		end = i
	}
	return end
}

func blockLimit(lines []string, start int) int {
	limit := start + MaxBlockLines - 1
	if limit > len(lines) {
		limit = len(lines)
	}
	return limit
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
