package structure

import (
	"path"
	"regexp"
	"sort"

	"codescope/internal/ir"
)

var (
	entryPointFile = regexp.MustCompile(`(?i)^(?:main|index|app|server|cli)\.(?:go|js|jsx|mjs|cjs|ts|tsx|py|rb|rs|java|kt|php|dart|cs)$|^(?:manage|wsgi|asgi|__main__)\.py$|^program\.cs$`)

	highFiles = []*regexp.Regexp{
		entryPointFile,
		regexp.MustCompile(`(?i)^(?:package\.json|go\.mod|cargo\.toml|pyproject\.toml|requirements.*\.txt|pipfile|gemfile|composer\.json|pom\.xml|build\.gradle(?:\.kts)?|setup\.py|mix\.exs|pubspec\.yaml|.*\.csproj)$`),
		regexp.MustCompile(`(?i)^(?:readme|license|licence|copying)(?:\.[a-z]+)?$`),
		regexp.MustCompile(`(?i)^(?:dockerfile|docker-compose\.ya?ml|compose\.ya?ml|makefile|jenkinsfile|\.gitlab-ci\.yml)$`),
	}
	entryPointPaths = []*regexp.Regexp{
		regexp.MustCompile(`(?:^|/)cmd/[^/]+/main\.go$`),
		regexp.MustCompile(`^bin/[^/.]+$`),
	}
	ciPath = regexp.MustCompile(`^\.github/workflows/|^\.circleci/`)

	mediumPaths = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:^|/)(?:api|apis|routes?|controllers?|handlers?|services?|models?|entities|schemas?|components?|views?|pages|hooks|stores?|middlewares?|domain|core|repositor(?:y|ies))/`),
		regexp.MustCompile(`(?i)(?:^|/)(?:tests?|__tests__|specs?|e2e)/`),
		regexp.MustCompile(`(?:_test\.go|\.(?:test|spec)\.[jt]sx?|_spec\.rb|Test\.java)$|(?:^|/)test_[^/]+\.py$`),
	}
	mediumFiles = []*regexp.Regexp{
		configFile,
	}

	highDirs   = regexp.MustCompile(`(?i)^(?:src|app|cmd|lib|internal|pkg|api|server)$`)
	mediumDirs = regexp.MustCompile(`(?i)^(?:components|services|handlers|controllers|models|routes|pages|views|hooks|utils|helpers|tests?|__tests__|specs?|config|docs?|scripts|middlewares?|stores?|domain|core)$`)
)

// FileImportance classifies a file from its name and path.
func FileImportance(rel string) ir.Importance {
	base := path.Base(rel)
	for _, re := range highFiles {
		if re.MatchString(base) {
			return ir.ImportanceHigh
		}
	}
	if ciPath.MatchString(rel) || isEntryPoint(rel) {
		return ir.ImportanceHigh
	}
	for _, re := range mediumFiles {
		if re.MatchString(base) {
			return ir.ImportanceMedium
		}
	}
	for _, re := range mediumPaths {
		if re.MatchString(rel) {
			return ir.ImportanceMedium
		}
	}
	return ir.ImportanceLow
}

// DirImportance classifies a directory from its own name.
func DirImportance(name string) ir.Importance {
	switch {
	case highDirs.MatchString(name):
		return ir.ImportanceHigh
	case mediumDirs.MatchString(name):
		return ir.ImportanceMedium
	default:
		return ir.ImportanceLow
	}
}

// AnnotateTree returns a copy of root with importance assigned to every node
// and children ordered directories first, then by descending importance, then
// by name. The input tree is left untouched.
func AnnotateTree(root *ir.FileNode) *ir.FileNode {
	if root == nil {
		return nil
	}
	out := &ir.FileNode{
		Type: root.Type,
		Name: root.Name,
		Path: root.Path,
		Size: root.Size,
	}
	if !root.IsDir() {
		out.Importance = FileImportance(root.Path)
		return out
	}

	out.Importance = DirImportance(root.Name)
	if root.Path == "." {
		out.Importance = ir.ImportanceHigh
	}
	for _, c := range root.Children {
		child := AnnotateTree(c)
		if child.Importance == ir.ImportanceHigh && out.Importance.Rank() < ir.ImportanceMedium.Rank() {
			out.Importance = ir.ImportanceMedium
		}
		out.Children = append(out.Children, child)
	}
	sortChildren(out.Children)
	return out
}

func sortChildren(nodes []*ir.FileNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		if a.Importance != b.Importance {
			return a.Importance.Rank() > b.Importance.Rank()
		}
		return a.Name < b.Name
	})
}
