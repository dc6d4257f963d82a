package storage

import (
	"context"
	"errors"
	"time"

	"codescope/internal/ir"
)

// ErrRunNotFound is returned when no stored run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is the listing view of a stored analysis.
type RunSummary struct {
	ID              string    `json:"id"`
	RepoName        string    `json:"repo_name"`
	RepoPath        string    `json:"repo_path"`
	Branch          string    `json:"branch,omitempty"`
	Commit          string    `json:"commit,omitempty"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
	FilesAnalyzed   int       `json:"files_analyzed"`
	Maintainability float64   `json:"maintainability_index"`
	Duplication     float64   `json:"duplicate_code_percentage"`
}

// Store combines run history and example lookup.
type Store interface {
	RunStore
	ExampleStore
	Close() error
}

// RunStore persists complete analyses.
type RunStore interface {
	// SaveAnalysis stores a and returns the new run ID.
	SaveAnalysis(ctx context.Context, a *ir.CodebaseAnalysis) (string, error)

	// ListRuns returns runs newest first. An empty repoPath lists every repository.
	ListRuns(ctx context.Context, repoPath string, limit int) ([]RunSummary, error)

	// LoadAnalysis returns the analysis stored under id.
	LoadAnalysis(ctx context.Context, id string) (*ir.CodebaseAnalysis, error)

	// DeleteRun removes a run and its examples.
	DeleteRun(ctx context.Context, id string) error
}

// ExampleStore queries the examples of stored runs.
type ExampleStore interface {
	// FindExamplesByFile returns the examples of one run taken from a file.
	FindExamplesByFile(ctx context.Context, runID, filePath string) ([]ir.CodeExample, error)
}
