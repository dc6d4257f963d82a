package detector

// Kind selects the output list a signature contributes to.
type Kind int

const (
	KindFramework Kind = iota
	KindDatastore
	KindTool
)

// Tags classify tools for downstream rules.
const (
	TagLinter    = "linter"
	TagFormatter = "formatter"
	TagTesting   = "testing"
	TagCI        = "ci"
	TagContainer = "container"
	TagTypes     = "types"
)

// Signal confidences for evidence that carries no per-signature value.
const (
	imageConfidence = 0.8
	envConfidence   = 0.6
)

// signature describes how to recognise one framework, datastore or tool.
// Each populated field is an independent signal; the strongest match wins.
type signature struct {
	Name              string
	Kind              Kind
	Packages          []string // exact dependency names
	Prefixes          []string // dependency name prefixes
	PackageConfidence float64
	Markers           []string // doublestar globs over file paths
	MarkerConfidence  float64
	Images            []string // compose image names without tag
	EnvSchemes        []string // URL schemes found in .env values
	Tags              []string
}

var signatures = []signature{
	// Frontend frameworks.
	{Name: "React", Kind: KindFramework, Packages: []string{"react", "react-dom"}, PackageConfidence: 0.9},
	{Name: "Next.js", Kind: KindFramework, Packages: []string{"next"}, PackageConfidence: 0.95,
		Markers: []string{"**/next.config.{js,mjs,ts,cjs}"}, MarkerConfidence: 0.9},
	{Name: "Vue", Kind: KindFramework, Packages: []string{"vue"}, PackageConfidence: 0.9,
		Markers: []string{"**/vue.config.js", "**/*.vue"}, MarkerConfidence: 0.75},
	{Name: "Nuxt", Kind: KindFramework, Packages: []string{"nuxt", "nuxt3"}, PackageConfidence: 0.95,
		Markers: []string{"**/nuxt.config.{js,ts}"}, MarkerConfidence: 0.9},
	{Name: "Angular", Kind: KindFramework, Packages: []string{"@angular/core"}, PackageConfidence: 0.95,
		Markers: []string{"angular.json"}, MarkerConfidence: 0.9},
	{Name: "Svelte", Kind: KindFramework, Packages: []string{"svelte", "@sveltejs/kit"}, PackageConfidence: 0.9,
		Markers: []string{"**/svelte.config.js", "**/*.svelte"}, MarkerConfidence: 0.75},
	{Name: "Gatsby", Kind: KindFramework, Packages: []string{"gatsby"}, PackageConfidence: 0.95,
		Markers: []string{"gatsby-config.{js,ts}"}, MarkerConfidence: 0.9},
	{Name: "Tailwind CSS", Kind: KindFramework, Packages: []string{"tailwindcss"}, PackageConfidence: 0.9,
		Markers: []string{"**/tailwind.config.{js,ts,cjs}"}, MarkerConfidence: 0.85},
	{Name: "React Native", Kind: KindFramework, Packages: []string{"react-native", "expo"}, PackageConfidence: 0.95},
	{Name: "Electron", Kind: KindFramework, Packages: []string{"electron"}, PackageConfidence: 0.9},
	{Name: "Tauri", Kind: KindFramework, Packages: []string{"@tauri-apps/api", "tauri"}, PackageConfidence: 0.9,
		Markers: []string{"**/tauri.conf.json"}, MarkerConfidence: 0.9},
	{Name: "Flutter", Kind: KindFramework, Markers: []string{"pubspec.yaml"}, MarkerConfidence: 0.8},

	// Backend frameworks.
	{Name: "Express", Kind: KindFramework, Packages: []string{"express"}, PackageConfidence: 0.9},
	{Name: "Fastify", Kind: KindFramework, Packages: []string{"fastify"}, PackageConfidence: 0.9},
	{Name: "Koa", Kind: KindFramework, Packages: []string{"koa"}, PackageConfidence: 0.9},
	{Name: "NestJS", Kind: KindFramework, Packages: []string{"@nestjs/core"}, PackageConfidence: 0.95,
		Markers: []string{"nest-cli.json"}, MarkerConfidence: 0.9},
	{Name: "Django", Kind: KindFramework, Packages: []string{"django"}, PackageConfidence: 0.95,
		Markers: []string{"**/manage.py"}, MarkerConfidence: 0.7},
	{Name: "Flask", Kind: KindFramework, Packages: []string{"flask"}, PackageConfidence: 0.9},
	{Name: "FastAPI", Kind: KindFramework, Packages: []string{"fastapi"}, PackageConfidence: 0.9},
	{Name: "Rails", Kind: KindFramework, Packages: []string{"rails"}, PackageConfidence: 0.95,
		Markers: []string{"config/routes.rb", "bin/rails"}, MarkerConfidence: 0.85},
	{Name: "Laravel", Kind: KindFramework, Packages: []string{"laravel/framework"}, PackageConfidence: 0.95,
		Markers: []string{"artisan"}, MarkerConfidence: 0.8},
	{Name: "Spring Boot", Kind: KindFramework, Prefixes: []string{"org.springframework.boot:"}, PackageConfidence: 0.95},
	{Name: "Gin", Kind: KindFramework, Packages: []string{"github.com/gin-gonic/gin"}, PackageConfidence: 0.9},
	{Name: "Echo", Kind: KindFramework, Prefixes: []string{"github.com/labstack/echo"}, PackageConfidence: 0.9},
	{Name: "Fiber", Kind: KindFramework, Prefixes: []string{"github.com/gofiber/fiber"}, PackageConfidence: 0.9},
	{Name: "Chi", Kind: KindFramework, Prefixes: []string{"github.com/go-chi/chi"}, PackageConfidence: 0.85},
	{Name: "Gorilla Mux", Kind: KindFramework, Packages: []string{"github.com/gorilla/mux"}, PackageConfidence: 0.85},
	{Name: "Cobra", Kind: KindFramework, Packages: []string{"github.com/spf13/cobra"}, PackageConfidence: 0.85},
	{Name: "Actix Web", Kind: KindFramework, Packages: []string{"actix-web"}, PackageConfidence: 0.9},
	{Name: "Axum", Kind: KindFramework, Packages: []string{"axum"}, PackageConfidence: 0.9},
	{Name: "Rocket", Kind: KindFramework, Packages: []string{"rocket"}, PackageConfidence: 0.9},

	// Datastores.
	{Name: "PostgreSQL", Kind: KindDatastore,
		Packages:          []string{"pg", "postgres", "psycopg2", "psycopg2-binary", "psycopg", "asyncpg", "github.com/lib/pq", "org.postgresql:postgresql"},
		Prefixes:          []string{"github.com/jackc/pgx"},
		PackageConfidence: 0.85,
		Images:            []string{"postgres", "postgis/postgis", "bitnami/postgresql"},
		EnvSchemes:        []string{"postgres", "postgresql"}},
	{Name: "MySQL", Kind: KindDatastore,
		Packages:          []string{"mysql", "mysql2", "pymysql", "mysqlclient", "github.com/go-sql-driver/mysql", "mysql:mysql-connector-java", "com.mysql:mysql-connector-j"},
		PackageConfidence: 0.85,
		Images:            []string{"mysql", "mariadb"},
		EnvSchemes:        []string{"mysql"}},
	{Name: "MongoDB", Kind: KindDatastore,
		Packages:          []string{"mongodb", "mongoose", "pymongo", "motor", "mongoid"},
		Prefixes:          []string{"go.mongodb.org/mongo-driver"},
		PackageConfidence: 0.85,
		Images:            []string{"mongo"},
		EnvSchemes:        []string{"mongodb", "mongodb+srv"}},
	{Name: "Redis", Kind: KindDatastore,
		Packages:          []string{"redis", "ioredis", "redis-py", "github.com/gomodule/redigo"},
		Prefixes:          []string{"github.com/redis/go-redis", "github.com/go-redis/redis"},
		PackageConfidence: 0.85,
		Images:            []string{"redis", "bitnami/redis"},
		EnvSchemes:        []string{"redis", "rediss"}},
	{Name: "SQLite", Kind: KindDatastore,
		Packages:          []string{"sqlite3", "better-sqlite3", "sqlite", "github.com/mattn/go-sqlite3", "modernc.org/sqlite", "rusqlite"},
		PackageConfidence: 0.8,
		Markers:           []string{"**/*.{sqlite,sqlite3}"},
		MarkerConfidence:  0.6,
		EnvSchemes:        []string{"sqlite"}},
	{Name: "Elasticsearch", Kind: KindDatastore,
		Packages:          []string{"@elastic/elasticsearch", "elasticsearch"},
		Prefixes:          []string{"github.com/elastic/go-elasticsearch"},
		PackageConfidence: 0.85,
		Images:            []string{"elasticsearch", "docker.elastic.co/elasticsearch/elasticsearch"}},
	{Name: "DynamoDB", Kind: KindDatastore,
		Packages:          []string{"@aws-sdk/client-dynamodb", "github.com/aws/aws-sdk-go-v2/service/dynamodb"},
		PackageConfidence: 0.7,
		Images:            []string{"amazon/dynamodb-local"}},

	// Tools.
	{Name: "Prisma", Kind: KindTool, Packages: []string{"prisma", "@prisma/client"}, PackageConfidence: 0.85,
		Markers: []string{"**/prisma/schema.prisma"}, MarkerConfidence: 0.9},
	{Name: "TypeScript", Kind: KindTool, Packages: []string{"typescript"}, PackageConfidence: 0.9,
		Markers: []string{"**/tsconfig.json"}, MarkerConfidence: 0.9, Tags: []string{TagTypes}},
	{Name: "ESLint", Kind: KindTool, Packages: []string{"eslint"}, PackageConfidence: 0.9,
		Markers: []string{"**/.eslintrc", "**/.eslintrc.{js,cjs,json,yml,yaml}", "**/eslint.config.{js,mjs,cjs,ts}"}, MarkerConfidence: 0.9,
		Tags: []string{TagLinter}},
	{Name: "Prettier", Kind: KindTool, Packages: []string{"prettier"}, PackageConfidence: 0.85,
		Markers: []string{"**/.prettierrc", "**/.prettierrc.{js,cjs,json,yml,yaml}", "**/prettier.config.{js,cjs}"}, MarkerConfidence: 0.85,
		Tags: []string{TagFormatter}},
	{Name: "golangci-lint", Kind: KindTool, Markers: []string{".golangci.{yml,yaml,toml,json}"}, MarkerConfidence: 0.9,
		Tags: []string{TagLinter}},
	{Name: "Ruff", Kind: KindTool, Packages: []string{"ruff"}, PackageConfidence: 0.85,
		Markers: []string{"**/ruff.toml", "**/.ruff.toml"}, MarkerConfidence: 0.9, Tags: []string{TagLinter}},
	{Name: "Flake8", Kind: KindTool, Packages: []string{"flake8"}, PackageConfidence: 0.85,
		Markers: []string{"**/.flake8"}, MarkerConfidence: 0.9, Tags: []string{TagLinter}},
	{Name: "Pylint", Kind: KindTool, Packages: []string{"pylint"}, PackageConfidence: 0.85,
		Markers: []string{"**/.pylintrc"}, MarkerConfidence: 0.9, Tags: []string{TagLinter}},
	{Name: "Black", Kind: KindTool, Packages: []string{"black"}, PackageConfidence: 0.85, Tags: []string{TagFormatter}},
	{Name: "RuboCop", Kind: KindTool, Packages: []string{"rubocop"}, PackageConfidence: 0.85,
		Markers: []string{"**/.rubocop.yml"}, MarkerConfidence: 0.9, Tags: []string{TagLinter}},
	{Name: "Clippy", Kind: KindTool, Markers: []string{"**/clippy.toml", "**/.clippy.toml"}, MarkerConfidence: 0.85,
		Tags: []string{TagLinter}},
	{Name: "Webpack", Kind: KindTool, Packages: []string{"webpack"}, PackageConfidence: 0.85,
		Markers: []string{"**/webpack.config.{js,ts,cjs}"}, MarkerConfidence: 0.9},
	{Name: "Vite", Kind: KindTool, Packages: []string{"vite"}, PackageConfidence: 0.9,
		Markers: []string{"**/vite.config.{js,ts,mjs}"}, MarkerConfidence: 0.9},
	{Name: "Babel", Kind: KindTool, Packages: []string{"@babel/core"}, PackageConfidence: 0.8,
		Markers: []string{"**/.babelrc", "**/babel.config.{js,json,cjs}"}, MarkerConfidence: 0.85},
	{Name: "Jest", Kind: KindTool, Packages: []string{"jest"}, PackageConfidence: 0.9,
		Markers: []string{"**/jest.config.{js,ts,cjs,mjs}"}, MarkerConfidence: 0.9, Tags: []string{TagTesting}},
	{Name: "Vitest", Kind: KindTool, Packages: []string{"vitest"}, PackageConfidence: 0.9,
		Markers: []string{"**/vitest.config.{js,ts,mjs}"}, MarkerConfidence: 0.9, Tags: []string{TagTesting}},
	{Name: "Mocha", Kind: KindTool, Packages: []string{"mocha"}, PackageConfidence: 0.85,
		Markers: []string{"**/.mocharc.{js,json,yml}"}, MarkerConfidence: 0.85, Tags: []string{TagTesting}},
	{Name: "Cypress", Kind: KindTool, Packages: []string{"cypress"}, PackageConfidence: 0.9,
		Markers: []string{"**/cypress.config.{js,ts}"}, MarkerConfidence: 0.9, Tags: []string{TagTesting}},
	{Name: "Playwright", Kind: KindTool, Packages: []string{"@playwright/test", "playwright"}, PackageConfidence: 0.9,
		Markers: []string{"**/playwright.config.{js,ts}"}, MarkerConfidence: 0.9, Tags: []string{TagTesting}},
	{Name: "pytest", Kind: KindTool, Packages: []string{"pytest"}, PackageConfidence: 0.9,
		Markers: []string{"**/pytest.ini", "**/conftest.py"}, MarkerConfidence: 0.85, Tags: []string{TagTesting}},
	{Name: "RSpec", Kind: KindTool, Packages: []string{"rspec", "rspec-rails"}, PackageConfidence: 0.9,
		Markers: []string{".rspec"}, MarkerConfidence: 0.85, Tags: []string{TagTesting}},
	{Name: "Go testing", Kind: KindTool, Markers: []string{"**/*_test.go"}, MarkerConfidence: 0.85, Tags: []string{TagTesting}},
	{Name: "testify", Kind: KindTool, Prefixes: []string{"github.com/stretchr/testify"}, PackageConfidence: 0.85,
		Tags: []string{TagTesting}},
	{Name: "JUnit", Kind: KindTool, Prefixes: []string{"junit:junit", "org.junit"}, PackageConfidence: 0.85,
		Tags: []string{TagTesting}},
	{Name: "Docker", Kind: KindTool,
		Markers: []string{"**/Dockerfile", "**/Dockerfile.*", "**/{docker-compose,compose}.{yml,yaml}"}, MarkerConfidence: 0.9,
		Tags: []string{TagContainer}},
	{Name: "Kubernetes", Kind: KindTool,
		Markers: []string{"**/{k8s,kubernetes,manifests}/**/*.{yml,yaml}", "**/kustomization.{yml,yaml}", "**/Chart.yaml"}, MarkerConfidence: 0.8},
	{Name: "Terraform", Kind: KindTool, Markers: []string{"**/*.tf"}, MarkerConfidence: 0.9},
	{Name: "GitHub Actions", Kind: KindTool, Markers: []string{".github/workflows/*.{yml,yaml}"}, MarkerConfidence: 0.95,
		Tags: []string{TagCI}},
	{Name: "GitLab CI", Kind: KindTool, Markers: []string{".gitlab-ci.yml"}, MarkerConfidence: 0.95, Tags: []string{TagCI}},
	{Name: "CircleCI", Kind: KindTool, Markers: []string{".circleci/config.yml"}, MarkerConfidence: 0.95, Tags: []string{TagCI}},
	{Name: "Jenkins", Kind: KindTool, Markers: []string{"Jenkinsfile"}, MarkerConfidence: 0.9, Tags: []string{TagCI}},
	{Name: "Make", Kind: KindTool, Markers: []string{"Makefile", "**/*.mk"}, MarkerConfidence: 0.8},
	{Name: "Husky", Kind: KindTool, Packages: []string{"husky"}, PackageConfidence: 0.85,
		Markers: []string{".husky/*"}, MarkerConfidence: 0.85},
	{Name: "Storybook", Kind: KindTool, Prefixes: []string{"@storybook/"}, PackageConfidence: 0.85,
		Markers: []string{".storybook/*"}, MarkerConfidence: 0.85},
	{Name: "Turborepo", Kind: KindTool, Packages: []string{"turbo"}, PackageConfidence: 0.85,
		Markers: []string{"turbo.json"}, MarkerConfidence: 0.9},
	{Name: "Nx", Kind: KindTool, Packages: []string{"nx"}, PackageConfidence: 0.85,
		Markers: []string{"nx.json"}, MarkerConfidence: 0.9},
}

var tagIndex = func() map[string][]string {
	idx := map[string][]string{}
	for _, s := range signatures {
		idx[s.Name] = s.Tags
	}
	return idx
}()

// HasTag reports whether any detected technology carries the tag.
func HasTag(techs []string, tag string) bool {
	for _, name := range techs {
		for _, t := range tagIndex[name] {
			if t == tag {
				return true
			}
		}
	}
	return false
}
