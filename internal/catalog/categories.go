package catalog

import (
	"regexp"

	"codescope/internal/ir"

	"github.com/bmatcuk/doublestar/v4"
)

// CategoryRule selects the files of one example category. Name locates the
// primary symbol of a file; its first non-empty capture group is the symbol
// name. A nil Name means the category quotes the file's leading lines.
type CategoryRule struct {
	Category ir.Category
	Weight   int
	Include  []string
	Exclude  []string
	Name     []*regexp.Regexp
	Excerpt  []string // files quoted from the top instead of by symbol
	Filter   bool     // apply the interestingness filter to candidates
}

var testGlobs = []string{
	"**/*_test.go",
	"**/*.{test,spec}.{js,jsx,ts,tsx,mjs}",
	"**/test_*.py",
	"**/*_test.py",
	"**/*_spec.rb",
	"**/{tests,test,__tests__,spec}/**/*." + codeExt,
}

var testDirGlobs = []string{"**/{tests,test,__tests__,spec}/**"}

var nonSourceGlobs = []string{
	"**/*.d.ts",
	"**/*.min.js",
	"**/*.stories.{js,jsx,ts,tsx}",
}

func excludeTests(extra ...string) []string {
	out := append([]string{}, testGlobs...)
	out = append(out, testDirGlobs...)
	out = append(out, nonSourceGlobs...)
	return append(out, extra...)
}

const codeExt = "{js,jsx,ts,tsx,mjs,py,go,rb,rs,java,kt,php,cs,swift}"

var (
	jsFunction     = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*\(`)
	jsArrow        = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:const|let)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*=>`)
	goFunc         = regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*(?:\[[^\]]*\])?\(`)
	pyDef          = regexp.MustCompile(`(?m)^[ \t]*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	rbDef          = regexp.MustCompile(`(?m)^[ \t]*def\s+(?:self\.)?([A-Za-z_]\w*[!?]?)`)
	rustFn         = regexp.MustCompile(`(?m)^[ \t]*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+([A-Za-z_]\w*)`)
	javaMethod     = regexp.MustCompile(`(?m)^[ \t]*(?:public|private|protected)\s+(?:static\s+)?(?:final\s+)?(?:async\s+)?[\w<>\[\],\s]+?\s+([a-z]\w*)\s*\([^)]*\)\s*(?:throws\s+[\w.,\s]+)?\{`)
	phpFunction    = regexp.MustCompile(`(?m)^[ \t]*(?:public\s+|private\s+|protected\s+)?(?:static\s+)?function\s+([A-Za-z_]\w*)\s*\(`)
	componentDecl  = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:default\s+)?(?:function\s+([A-Z]\w*)\s*\(|(?:const|let)\s+([A-Z]\w*)\s*(?::\s*[\w.<>]+\s*)?=\s*(?:\([^)]*\)|\w+)\s*=>|class\s+([A-Z]\w*)\s+extends\s+(?:React\.)?(?:Pure)?Component)`)
	testDecl       = regexp.MustCompile("(?m)^[ \\t]*(?:describe|it|test)\\s*\\(\\s*['\"`]([^'\"`]+)['\"`]|^func\\s+(Test\\w+)\\s*\\(|^[ \\t]*(?:async\\s+)?def\\s+(test_\\w+)\\s*\\(|^[ \\t]*(?:describe|it)\\s+['\"]([^'\"]+)['\"]")
	routeDecl      = regexp.MustCompile(`(?m)^[ \t]*(?:app|router|r|e|mux|api|server|g|v1)\.(get|post|put|patch|delete|Get|Post|Put|Patch|Delete|Handle|HandleFunc|GET|POST|PUT|PATCH|DELETE)\s*\(`)
	routeHandler   = regexp.MustCompile(`(?m)^func\s+(?:\([^)]*\)\s*)?([A-Z]\w*)\s*\(\s*\w+\s+http\.ResponseWriter|^func\s+(?:\([^)]*\)\s*)?([A-Z]\w*)\s*\(\s*c\s+\*?(?:gin|echo|fiber)\.`)
	routeDecorator = regexp.MustCompile(`(?m)^[ \t]*@(?:app|router|bp|api)\.(get|post|put|patch|delete|route)\s*\(`)
	nextRoute      = regexp.MustCompile(`(?m)^[ \t]*export\s+(?:async\s+)?function\s+(GET|POST|PUT|PATCH|DELETE)\s*\(`)
	springRoute    = regexp.MustCompile(`(?m)^[ \t]*@(Get|Post|Put|Patch|Delete|Request)Mapping\b`)
	modelDecl      = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:abstract\s+)?(?:class|interface|model|struct|enum)\s+([A-Z]\w*)|^type\s+([A-Z]\w*)\s+struct\b|^[ \t]*(?:export\s+)?type\s+([A-Z]\w*)\s*=\s*\{`)
)

var functionNames = []*regexp.Regexp{jsFunction, jsArrow, goFunc, pyDef, rbDef, rustFn, javaMethod, phpFunction}

// Categories lists the example categories in output order.
var Categories = []CategoryRule{
	{
		Category: ir.CategoryComponent,
		Weight:   3,
		Include:  []string{"**/*.{jsx,tsx,vue,svelte}"},
		Exclude:  excludeTests(),
		Name:     []*regexp.Regexp{componentDecl},
		Excerpt:  []string{"**/*.{vue,svelte}"},
	},
	{
		Category: ir.CategoryFunction,
		Weight:   2,
		Include:  []string{"**/*." + codeExt},
		Exclude:  excludeTests("**/*.{jsx,tsx}"),
		Name:     functionNames,
		Filter:   true,
	},
	{
		Category: ir.CategoryTest,
		Weight:   1,
		Include:  testGlobs,
		Exclude:  nonSourceGlobs,
		Name:     []*regexp.Regexp{testDecl},
	},
	{
		Category: ir.CategoryConfig,
		Weight:   1,
		Include: []string{
			"**/*.config.{js,ts,mjs,cjs}",
			"**/tsconfig.json",
			"**/.eslintrc",
			"**/.eslintrc.{js,json,cjs,yml}",
			"**/{docker-compose,compose}.{yml,yaml}",
			"**/Dockerfile",
			"**/Makefile",
			".github/workflows/*.{yml,yaml}",
			"**/{settings,config}.py",
			"**/application.{yml,yaml,properties}",
		},
	},
	{
		Category: ir.CategoryAPI,
		Weight:   3,
		Include: []string{
			"**/{api,apis,routes,router,routers,controllers,handlers,endpoints}/**/*." + codeExt,
			"**/*{route,router,routes,controller,handler,handlers,views}.{js,ts,py,go,rb,java,php}",
		},
		Exclude: excludeTests(),
		Name:    []*regexp.Regexp{nextRoute, routeDecorator, routeHandler, routeDecl, springRoute},
	},
	{
		Category: ir.CategoryModel,
		Weight:   2,
		Include: []string{
			"**/{models,model,entities,entity,schemas,schema,domain}/**/*." + codeExt,
			"**/*.{model,entity,schema}.{js,ts}",
			"**/models.py",
		},
		Exclude: excludeTests(),
		Name:    []*regexp.Regexp{modelDecl},
	},
	{
		Category: ir.CategoryUtil,
		Weight:   1,
		Include: []string{
			"**/{utils,util,helpers,helper,lib,common,shared}/**/*." + codeExt,
			"**/*{util,utils,helper,helpers}.{js,ts,py,go,rb}",
		},
		Exclude: excludeTests(),
		Name:    functionNames,
	},
}

// Matches reports whether rel belongs to the rule's file set.
func (r CategoryRule) Matches(rel string) bool {
	if !MatchAny(r.Include, rel) {
		return false
	}
	return !MatchAny(r.Exclude, rel)
}

// CategoryFor returns the most specific category for a path, preferring
// test, api, model, component, config and util over the generic function
// category. ok is false when no category claims the file.
func CategoryFor(rel string) (ir.Category, bool) {
	order := []ir.Category{
		ir.CategoryTest,
		ir.CategoryAPI,
		ir.CategoryModel,
		ir.CategoryComponent,
		ir.CategoryConfig,
		ir.CategoryUtil,
		ir.CategoryFunction,
	}
	for _, c := range order {
		if Rule(c).Matches(rel) {
			return c, true
		}
	}
	return "", false
}

// Rule returns the rule for a category.
func Rule(c ir.Category) CategoryRule {
	for _, r := range Categories {
		if r.Category == c {
			return r
		}
	}
	return CategoryRule{Category: c}
}

// MatchAny reports whether rel matches any of the doublestar patterns.
func MatchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
