package structure

import (
	"path"
	"regexp"

	"codescope/internal/index"
	"codescope/internal/manifest"
)

// indicator is one weighted kind of evidence for a project type or an
// architecture. Every matched glob, directory name and dependency counts once.
type indicator struct {
	Name  string
	Globs []string
	Dirs  []string
	Deps  []string
}

func (ind indicator) count(snap *index.Snapshot, deps *manifest.Set) int {
	n := 0
	for _, g := range ind.Globs {
		if _, ok := snap.AnyMatch(g); ok {
			n++
		}
	}
	for _, d := range ind.Dirs {
		if hasDirNamed(snap, d) {
			n++
		}
	}
	for _, d := range ind.Deps {
		if _, ok := deps.Lookup(d); ok {
			n++
		}
	}
	return n
}

func hasDirNamed(snap *index.Snapshot, name string) bool {
	for _, d := range snap.Dirs {
		if path.Base(d) == name {
			return true
		}
	}
	return false
}

const (
	typeFrontend = "frontend"
	typeBackend  = "backend"
	typeFull     = "fullstack"
	typeMobile   = "mobile"
	typeDesktop  = "desktop"
	typeLibrary  = "library"
	typeUnknown  = "unknown"
)

// projectTypes is evaluated in order; earlier entries win ties.
var projectTypes = []indicator{
	{
		Name: typeFrontend,
		Globs: []string{
			"**/next.config.*", "**/nuxt.config.*", "**/vite.config.*", "**/svelte.config.*",
			"**/angular.json", "**/index.html", "**/*.jsx", "**/*.tsx", "**/*.vue", "**/*.svelte",
		},
		Deps: []string{"react", "react-dom", "vue", "@angular/core", "svelte", "next", "nuxt", "solid-js", "preact"},
	},
	{
		Name: typeBackend,
		Globs: []string{
			"**/server.{js,ts,go,py}", "**/manage.py", "**/wsgi.py", "**/Procfile",
			"**/routes/**", "**/controllers/**", "**/handlers/**", "**/migrations/**",
		},
		Deps: []string{
			"express", "fastify", "koa", "@nestjs/core", "@hapi/hapi",
			"django", "flask", "fastapi",
			"rails", "sinatra", "laravel/framework",
			"github.com/gin-gonic/gin", "github.com/labstack/echo/v4", "github.com/gofiber/fiber/v2", "github.com/go-chi/chi/v5",
			"org.springframework.boot:spring-boot-starter-web", "actix-web", "axum", "rocket",
		},
	},
	{
		Name:  typeMobile,
		Globs: []string{"**/AndroidManifest.xml", "**/Info.plist", "**/pubspec.yaml", "**/*.xcodeproj/**"},
		Dirs:  []string{"ios", "android"},
		Deps:  []string{"react-native", "expo", "@ionic/core", "@capacitor/core"},
	},
	{
		Name:  typeDesktop,
		Globs: []string{"**/electron-builder.*", "**/tauri.conf.json", "**/*.xaml"},
		Deps:  []string{"electron", "@tauri-apps/api", "github.com/wailsapp/wails/v2", "pyqt5", "pyside6"},
	},
	{
		Name:  typeLibrary,
		Globs: []string{"setup.py", "setup.cfg", "*.gemspec", "src/lib.rs", "*.podspec", "rollup.config.*"},
	},
}

const archMonolith = "monolith"

// minArchitectureIndicators is the number of distinct indicators an
// architecture needs before it can be selected.
const minArchitectureIndicators = 2

// architectures is evaluated in order; earlier entries win ties.
var architectures = []indicator{
	{
		Name: "microservices",
		Globs: []string{
			"services/*/Dockerfile", "apps/*/Dockerfile", "**/k8s/**", "**/kubernetes/**",
			"**/Chart.yaml", "**/skaffold.yaml", "**/*.proto",
		},
	},
	{
		Name:  "serverless",
		Globs: []string{"**/serverless.{yml,yaml}", "**/template.{yml,yaml}", "**/netlify/functions/**", "**/lambda/**", "api/*.{js,ts}"},
		Deps:  []string{"serverless", "aws-lambda", "@netlify/functions", "@vercel/node", "firebase-functions", "github.com/aws/aws-lambda-go"},
	},
	{
		Name:  "jamstack",
		Globs: []string{"**/gatsby-config.*", "**/astro.config.*", "**/_config.yml", "**/hugo.toml", "**/netlify.toml", "**/vercel.json", "**/content/**/*.md"},
		Deps:  []string{"gatsby", "astro", "@11ty/eleventy", "next", "nuxt"},
	},
	{
		Name: "mvc",
		Dirs: []string{"models", "views", "controllers"},
		Deps: []string{"rails", "laravel/framework", "django", "sails", "org.springframework.boot:spring-boot-starter-web"},
	},
}

// minComposeServices marks a compose file describing several services.
const minComposeServices = 3

type namedFiles struct {
	Name  string
	Globs []string
}

var buildSystems = []namedFiles{
	{"Go Modules", []string{"**/go.mod"}},
	{"Cargo", []string{"**/Cargo.toml"}},
	{"Maven", []string{"**/pom.xml"}},
	{"Gradle", []string{"**/build.gradle", "**/build.gradle.kts"}},
	{"Make", []string{"**/Makefile", "**/GNUmakefile"}},
	{"CMake", []string{"**/CMakeLists.txt"}},
	{"Bazel", []string{"WORKSPACE", "MODULE.bazel", "**/BUILD.bazel"}},
	{"MSBuild", []string{"**/*.csproj", "**/*.sln"}},
	{"Webpack", []string{"**/webpack.config.*"}},
	{"Vite", []string{"**/vite.config.*"}},
	{"Rollup", []string{"**/rollup.config.*"}},
	{"Turborepo", []string{"turbo.json"}},
	{"Nx", []string{"nx.json"}},
	{"Setuptools", []string{"**/setup.py", "**/setup.cfg"}},
	{"Task", []string{"Taskfile.{yml,yaml}"}},
	{"Just", []string{"justfile", "Justfile"}},
}

// packageManagers is in priority order: lock files before manifests.
var packageManagers = []namedFiles{
	{"pnpm", []string{"**/pnpm-lock.yaml"}},
	{"yarn", []string{"**/yarn.lock"}},
	{"bun", []string{"**/bun.lockb", "**/bun.lock"}},
	{"npm", []string{"**/package-lock.json"}},
	{"poetry", []string{"**/poetry.lock"}},
	{"pipenv", []string{"**/Pipfile.lock"}},
	{"uv", []string{"**/uv.lock"}},
	{"cargo", []string{"**/Cargo.lock"}},
	{"go modules", []string{"**/go.sum"}},
	{"bundler", []string{"**/Gemfile.lock"}},
	{"composer", []string{"**/composer.lock"}},
	{"npm", []string{"**/package.json"}},
	{"pip", []string{"**/requirements*.txt", "**/pyproject.toml", "**/setup.py"}},
	{"pipenv", []string{"**/Pipfile"}},
	{"cargo", []string{"**/Cargo.toml"}},
	{"go modules", []string{"**/go.mod"}},
	{"bundler", []string{"**/Gemfile"}},
	{"composer", []string{"**/composer.json"}},
	{"maven", []string{"**/pom.xml"}},
	{"gradle", []string{"**/build.gradle", "**/build.gradle.kts"}},
}

var (
	configFile = regexp.MustCompile(`(?i)^(?:tsconfig.*\.json|jsconfig\.json|.*\.config\.(?:js|cjs|mjs|ts)|\.eslintrc.*|eslint\.config\..*|\.prettierrc.*|\.babelrc|\.editorconfig|\.env\.example|\.env\.sample|\.golangci\.ya?ml|setup\.cfg|tox\.ini|pytest\.ini|\.rubocop\.yml|config\.(?:ya?ml|json|toml)|settings\.py|application\.(?:ya?ml|properties)|appsettings\.json)$`)
	testDir    = regexp.MustCompile(`(?i)^(?:tests?|__tests__|specs?|e2e|integration|testdata)$`)
)

type docSignal struct {
	Name string
	File *regexp.Regexp
	Dir  []string
}

const readmePoints = 2

var (
	readme = regexp.MustCompile(`(?i)^readme(?:\.[a-z]+)?$`)

	auxiliaryDocs = []docSignal{
		{Name: "CONTRIBUTING", File: regexp.MustCompile(`(?i)^contributing(?:\.[a-z]+)?$`)},
		{Name: "CHANGELOG", File: regexp.MustCompile(`(?i)^(?:changelog|changes|history)(?:\.[a-z]+)?$`)},
		{Name: "LICENSE", File: regexp.MustCompile(`(?i)^(?:license|licence|copying)(?:\.[a-z]+)?$`)},
		{Name: "CODE_OF_CONDUCT", File: regexp.MustCompile(`(?i)^code_of_conduct(?:\.[a-z]+)?$`)},
		{Name: "docs directory", Dir: []string{"docs", "doc", "documentation"}},
	}
)

// Documentation quality thresholds, in points.
const (
	docExcellent = 8
	docGood      = 5
	docModerate  = 2

	commentDensityLow  = 0.10
	commentDensityHigh = 0.20
)
