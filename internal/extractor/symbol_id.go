package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// exampleNamespace scopes example IDs so they never collide with other
// name-based UUIDs.
var exampleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("codescope://examples"))

// ExampleID derives a deterministic identifier from the identity of an
// excerpt: its kind, the file and the line range. Repeated analyses of the
// same tree yield the same IDs.
func ExampleID(kind, rel string, start, end int) string {
	fingerprint := strings.Join([]string{
		canonicalize(kind),
		canonicalize(rel),
		fmt.Sprintf("%d-%d", start, end),
	}, "|")
	return uuid.NewSHA1(exampleNamespace, []byte(fingerprint)).String()
}

func canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	return whitespaceRe.ReplaceAllString(s, " ")
}
