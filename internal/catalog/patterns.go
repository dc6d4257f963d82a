// Package catalog holds the static tables that drive pattern detection and
// example extraction. Tables are data; evaluation lives in the consumers.
package catalog

import "regexp"

// Pattern describes a recurring structural pattern. At least one of File or
// Content is set. When only File is set, frequency counts matching files.
type Pattern struct {
	Name           string
	Description    string
	Recommendation string
	File           *regexp.Regexp
	Content        *regexp.Regexp
}

var (
	jsLike   = regexp.MustCompile(`\.(jsx?|tsx?|mjs|cjs)$`)
	reactExt = regexp.MustCompile(`\.(jsx|tsx)$`)
	goFile   = regexp.MustCompile(`\.go$`)
)

// Patterns is the pattern catalog in display order.
var Patterns = []Pattern{
	{
		Name:           "React Hooks",
		Description:    "Function components manage state and side effects through built-in hooks.",
		Recommendation: "Keep hooks at the top level of components and extract shared logic into custom hooks.",
		File:           jsLike,
		Content:        regexp.MustCompile(`\buse(State|Effect|Context|Reducer|Memo|Callback|Ref|LayoutEffect)\s*\(`),
	},
	{
		Name:           "Custom Hooks",
		Description:    "Reusable stateful logic packaged as use* functions.",
		Recommendation: "Give each custom hook a single responsibility and test it in isolation.",
		File:           jsLike,
		Content:        regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?(?:const|function)\s+use[A-Z]\w*`),
	},
	{
		Name:           "Higher-Order Components",
		Description:    "Components wrapped by with* functions that inject behaviour.",
		Recommendation: "Prefer hooks for new code; keep existing wrappers thin and well named.",
		File:           jsLike,
		Content:        regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|function)\s+with[A-Z]\w*\s*[=(]`),
	},
	{
		Name:           "Component Composition",
		Description:    "Components accept children and compose larger views from smaller ones.",
		Recommendation: "Compose through children and slots rather than deep prop drilling.",
		File:           reactExt,
		Content:        regexp.MustCompile(`props\.children|\{\s*children\s*[},]`),
	},
	{
		Name:           "Context Providers",
		Description:    "Shared state is distributed through context providers.",
		Recommendation: "Split large contexts so consumers re-render only on the data they use.",
		File:           jsLike,
		Content:        regexp.MustCompile(`createContext\s*\(|\.Provider\b`),
	},
	{
		Name:           "Middleware & Routing",
		Description:    "HTTP routes and middleware are registered on a router or application object.",
		Recommendation: "Group routes by resource and keep handlers thin by delegating to services.",
		Content:        regexp.MustCompile(`\b(?:app|router|r|e|mux|server|api|g)\.(?:use|get|post|put|patch|delete|Use|Get|Post|Put|Patch|Delete|Handle|HandleFunc|GET|POST|PUT|PATCH|DELETE|Group|route)\s*\(`),
	},
	{
		Name:           "Middleware Functions",
		Description:    "Request pipelines built from chained middleware functions.",
		Recommendation: "Order middleware deliberately and keep each one focused on a single concern.",
		Content:        regexp.MustCompile(`\(\s*req\s*,\s*res\s*,\s*next\s*\)|func\s*\(\s*next\s+http\.Handler\s*\)|\bnext\s*\(\s*\)`),
	},
	{
		Name:           "Async/Await",
		Description:    "Asynchronous work is written in async/await style.",
		Recommendation: "Handle rejections explicitly and avoid awaiting independent work sequentially.",
		Content:        regexp.MustCompile(`\basync\s+(?:function|def|\(|\w+\s*=>)|\bawait\s+`),
	},
	{
		Name:           "Promise Chains",
		Description:    "Asynchronous flows composed with then/catch chains.",
		Recommendation: "Consider async/await for long chains to flatten control flow.",
		File:           jsLike,
		Content:        regexp.MustCompile(`\.then\s*\(`),
	},
	{
		Name:           "Error Handling",
		Description:    "Failures are caught and handled close to where they occur.",
		Recommendation: "Wrap errors with context and avoid swallowing them silently.",
		Content:        regexp.MustCompile(`\btry\s*[:{]|\bexcept\b|\bcatch\s*\(|if\s+err\s*!=\s*nil`),
	},
	{
		Name:           "Repository Pattern",
		Description:    "Data access is isolated behind repository or store types.",
		Recommendation: "Keep repositories free of business rules and expose intention-revealing methods.",
		File:           regexp.MustCompile(`(?i)(repositor|repo|store|dao)`),
		Content:        regexp.MustCompile(`(?i)(?:class|type|interface|struct)\s+\w*(?:Repository|Repo|Store|DAO)\b`),
	},
	{
		Name:           "Service Layer",
		Description:    "Business logic lives in dedicated service types.",
		Recommendation: "Keep services independent of transport concerns so they stay reusable.",
		File:           regexp.MustCompile(`(?i)(^|/)services?(/|\.|_)|service\.`),
		Content:        regexp.MustCompile(`(?:class|type|interface|struct)\s+\w*Service\b`),
	},
	{
		Name:           "MVC Controllers",
		Description:    "Request handling is organised into controller files.",
		Recommendation: "Limit controllers to request parsing and response shaping.",
		File:           regexp.MustCompile(`(?i)(^|/)controllers?/`),
	},
	{
		Name:           "Dependency Injection",
		Description:    "Collaborators are passed in through constructors or injection annotations.",
		Recommendation: "Inject interfaces at boundaries to keep units testable.",
		Content:        regexp.MustCompile(`@Injectable|@Inject\b|@Autowired|constructor\s*\(\s*(?:private|public|readonly)\s|func\s+New[A-Z]\w*\(`),
	},
	{
		Name:           "Data Validation",
		Description:    "Inputs are validated against explicit schemas or validators.",
		Recommendation: "Validate at the system boundary and share schemas between layers.",
		Content:        regexp.MustCompile(`\b(?:z\.object|Joi\.|yup\.|BaseModel|@IsString|@IsNotEmpty|validator\.|validate\.Struct|schema\.parse)\b|\bvalidate\s*\(`),
	},
	{
		Name:           "Singleton",
		Description:    "A single shared instance is created lazily and reused.",
		Recommendation: "Prefer explicit dependency passing; singletons hide coupling and complicate tests.",
		Content:        regexp.MustCompile(`getInstance\s*\(|sync\.Once\b|@Singleton`),
	},
	{
		Name:           "Factory Functions",
		Description:    "Objects are built through create/make/build factory functions.",
		Recommendation: "Keep factories small and return fully initialised values.",
		Content:        regexp.MustCompile(`(?m)(?:function|func|def)\s+(?:create|make|build|Create|Make|Build)[A-Z_]\w*\s*\(`),
	},
	{
		Name:           "Event Emitters",
		Description:    "Components communicate through events and listeners.",
		Recommendation: "Document event names and payloads, and remove listeners when done.",
		Content:        regexp.MustCompile(`\.on\(\s*['"]|\.emit\(|EventEmitter|addEventListener\(`),
	},
	{
		Name:           "Unit Tests",
		Description:    "Behaviour is verified by automated unit tests.",
		Recommendation: "Keep tests close to the code and cover edge cases as well as happy paths.",
		File:           regexp.MustCompile(`(?i)(_test\.go|\.(test|spec)\.[jt]sx?|(^|/)test_\w+\.py|_test\.py|_spec\.rb)$`),
		Content:        regexp.MustCompile(`(?m)\b(?:describe|it|test)\s*\(\s*['"\x60]|^func\s+Test\w+\(|^\s*def\s+test_\w+|^\s*it\s+['"]`),
	},
	{
		Name:           "Type Definitions",
		Description:    "Data shapes are declared with TypeScript interfaces and type aliases.",
		Recommendation: "Export shared types from one place and avoid any.",
		File:           regexp.MustCompile(`\.tsx?$`),
		Content:        regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:interface|type)\s+[A-Z]\w*`),
	},
	{
		Name:           "Environment Configuration",
		Description:    "Runtime settings are read from environment variables.",
		Recommendation: "Validate configuration once at startup and document every variable.",
		Content:        regexp.MustCompile(`process\.env\.|os\.Getenv\(|os\.environ|ENV\[|System\.getenv\(`),
	},
	{
		Name:           "ORM Models",
		Description:    "Persistent entities are declared as ORM models.",
		Recommendation: "Keep models free of presentation logic and version schema changes with migrations.",
		Content:        regexp.MustCompile(`@Entity\b|mongoose\.Schema|models\.Model\b|gorm\.Model|sequelize\.define|@Table\b|ActiveRecord::Base|db\.Model\b`),
	},
	{
		Name:           "Goroutines & Channels",
		Description:    "Concurrent work is expressed with goroutines and channels.",
		Recommendation: "Bound concurrency and always give goroutines a way to stop.",
		File:           goFile,
		Content:        regexp.MustCompile(`\bgo\s+func\s*\(|\bgo\s+\w+(?:\.\w+)*\(|make\(\s*chan\b|\bselect\s*\{`),
	},
	{
		Name:           "Interfaces",
		Description:    "Behaviour is abstracted behind small Go interfaces.",
		Recommendation: "Define interfaces where they are consumed and keep them small.",
		File:           goFile,
		Content:        regexp.MustCompile(`(?m)^type\s+\w+\s+interface\s*\{`),
	},
	{
		Name:           "Layered Architecture",
		Description:    "Source is split into layers such as handlers, services and repositories.",
		Recommendation: "Keep dependencies pointing inward and avoid skipping layers.",
		File:           regexp.MustCompile(`(?i)(^|/)(controllers|services|repositories|handlers|domain|usecases?|infrastructure|adapters)/`),
	},
	{
		Name:           "Barrel Exports",
		Description:    "Index modules re-export a directory's public surface.",
		Recommendation: "Keep barrels shallow to avoid circular imports and slow builds.",
		File:           regexp.MustCompile(`(^|/)index\.[jt]sx?$`),
		Content:        regexp.MustCompile(`(?m)^export\s+(?:\*|\{[^}]*\})\s+from\s`),
	},
	{
		Name:           "File-based API Routes",
		Description:    "API endpoints are defined by file location under an api directory.",
		Recommendation: "Mirror the URL structure in the directory tree and share handlers via modules.",
		File:           regexp.MustCompile(`(^|/)(pages|app|src/pages|src/app)/api/`),
	},
	{
		Name:           "Decorators",
		Description:    "Behaviour is attached declaratively through decorators or annotations.",
		Recommendation: "Keep decorators side-effect free and document their contracts.",
		File:           regexp.MustCompile(`\.(py|ts|tsx|java|kt)$`),
		Content:        regexp.MustCompile(`(?m)^\s*@[A-Za-z_][\w.]*(?:\(|$)`),
	},
	{
		Name:           "Structured Logging",
		Description:    "Diagnostics are written through a logger.",
		Recommendation: "Use structured fields and consistent levels instead of ad-hoc prints.",
		Content:        regexp.MustCompile(`console\.(?:log|error|warn|info)\(|\blogger\.\w+\(|\blog\.(?:Printf|Println|Info|Error|Debug|Warn)\w*\(|\blogging\.\w+\(`),
	},
}
