package ir

import "time"

// Importance ranks how central a file or directory is to understanding a project.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Rank orders importance levels; higher is more important.
func (i Importance) Rank() int {
	switch i {
	case ImportanceHigh:
		return 2
	case ImportanceMedium:
		return 1
	default:
		return 0
	}
}

// NodeType distinguishes files from directories in the file tree.
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeDirectory NodeType = "directory"
)

// FileNode is one entry of the repository tree. Path is slash-separated and
// relative to the analysed root; the root itself is ".".
type FileNode struct {
	Type       NodeType    `json:"type"`
	Name       string      `json:"name"`
	Path       string      `json:"path"`
	Importance Importance  `json:"importance"`
	Size       int64       `json:"size,omitempty"`
	Children   []*FileNode `json:"children,omitempty"`
}

// IsDir reports whether the node is a directory.
func (n *FileNode) IsDir() bool {
	return n.Type == NodeDirectory
}

// Technology is a detected language, framework, datastore or tool.
type Technology struct {
	Name       string   `json:"name"`
	Confidence float64  `json:"confidence"`
	Version    string   `json:"version,omitempty"`
	Evidence   []string `json:"evidence"`
}

// Technologies groups detections by kind. Each list is sorted by descending confidence.
type Technologies struct {
	Languages  []Technology `json:"languages"`
	Frameworks []Technology `json:"frameworks"`
	Datastores []Technology `json:"datastores"`
	Tools      []Technology `json:"tools"`
}

// Category classifies a code example.
type Category string

const (
	CategoryComponent Category = "component"
	CategoryFunction  Category = "function"
	CategoryTest      Category = "test"
	CategoryConfig    Category = "config"
	CategoryAPI       Category = "api"
	CategoryModel     Category = "model"
	CategoryUtil      Category = "util"
)

// Categories lists every example category in output order.
var Categories = []Category{
	CategoryComponent,
	CategoryFunction,
	CategoryTest,
	CategoryConfig,
	CategoryAPI,
	CategoryModel,
	CategoryUtil,
}

// Complexity is the coarse tier assigned to a code fragment.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Rank orders tiers from 1 (simple) to 3 (complex).
func (c Complexity) Rank() int {
	switch c {
	case ComplexityComplex:
		return 3
	case ComplexityModerate:
		return 2
	default:
		return 1
	}
}

// CodeExample is a verbatim excerpt of a repository file.
// Code is exactly lines StartLine..EndLine (1-based, inclusive) of FilePath.
type CodeExample struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FilePath    string     `json:"file_path"`
	StartLine   int        `json:"start_line"`
	EndLine     int        `json:"end_line"`
	Code        string     `json:"code"`
	Language    string     `json:"language"`
	Category    Category   `json:"category"`
	Complexity  Complexity `json:"complexity"`
	Patterns    []string   `json:"patterns"`
}

// PatternDetection is a recurring structural pattern found in the repository.
type PatternDetection struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Examples       []CodeExample `json:"examples"`
	Frequency      int           `json:"frequency"`
	Recommendation string        `json:"recommendation"`
}

// ComplexityScores holds per-file average complexity values.
type ComplexityScores struct {
	Cyclomatic float64 `json:"cyclomatic"`
	Cognitive  float64 `json:"cognitive"`
}

// CodeQualityMetrics summarises the sampled source files.
type CodeQualityMetrics struct {
	FilesAnalyzed           int              `json:"files_analyzed"`
	AverageFileSize         float64          `json:"average_file_size"`
	TotalLines              int              `json:"total_lines"`
	CommentRatio            float64          `json:"comment_ratio"`
	Complexity              ComplexityScores `json:"complexity"`
	MaintainabilityIndex    float64          `json:"maintainability_index"`
	DuplicateCodePercentage float64          `json:"duplicate_code_percentage"`
}

// Documentation describes how well a project documents itself.
type Documentation struct {
	Quality string   `json:"quality"`
	Score   int      `json:"score"`
	Signals []string `json:"signals"`
}

// Structure is the outcome of structure analysis.
type Structure struct {
	ProjectType      string        `json:"project_type"`
	Architecture     string        `json:"architecture"`
	BuildSystems     []string      `json:"build_systems"`
	PackageManager   string        `json:"package_manager"`
	Documentation    Documentation `json:"documentation"`
	EntryPoints      []string      `json:"entry_points"`
	ConfigFiles      []string      `json:"config_files"`
	TestDirectories  []string      `json:"test_directories"`
	TotalFiles       int           `json:"total_files"`
	TotalDirectories int           `json:"total_directories"`
}

// Repository identifies the analysed source tree.
type Repository struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Branch string `json:"branch,omitempty"`
	Commit string `json:"commit,omitempty"`
	Remote string `json:"remote,omitempty"`
}

// Insights are human-readable observations derived from the rest of the analysis.
type Insights struct {
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
	Opportunities []string `json:"opportunities"`
	Risks         []string `json:"risks"`
}

// CodebaseAnalysis is the complete profile of one repository. It is produced once
// per analysis run and must not be mutated afterwards.
type CodebaseAnalysis struct {
	Repository   Repository                 `json:"repository"`
	AnalyzedAt   time.Time                  `json:"analyzed_at"`
	Technologies Technologies               `json:"technologies"`
	Structure    Structure                  `json:"structure"`
	FileTree     *FileNode                  `json:"file_tree"`
	Examples     map[Category][]CodeExample `json:"examples"`
	Patterns     []PatternDetection         `json:"patterns"`
	Quality      CodeQualityMetrics         `json:"quality"`
	Insights     Insights                   `json:"insights"`
}
