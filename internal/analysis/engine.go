// Package analysis runs every analyzer over a repository and assembles the
// resulting CodebaseAnalysis.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codescope/internal/config"
	"codescope/internal/crawler"
	"codescope/internal/detector"
	"codescope/internal/extractor"
	"codescope/internal/git"
	"codescope/internal/index"
	"codescope/internal/insight"
	"codescope/internal/ir"
	"codescope/internal/manifest"
	"codescope/internal/patterns"
	"codescope/internal/quality"
	"codescope/internal/structure"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Stage names reported to progress callbacks and metrics, in order.
const (
	StageWalk         = "walk"
	StageStructure    = "structure"
	StageTechnologies = "technologies"
	StagePatterns     = "patterns"
	StageExamples     = "examples"
	StageQuality      = "quality"
	StageInsights     = "insights"
)

// Stages lists every stage in reporting order.
var Stages = []string{
	StageWalk,
	StageStructure,
	StageTechnologies,
	StagePatterns,
	StageExamples,
	StageQuality,
	StageInsights,
}

// ErrNotDirectory is wrapped by a PathError when the root is a file.
var ErrNotDirectory = errors.New("not a directory")

// PathError reports an analysis root that cannot be analysed. It is returned
// before any file is read.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("analyse %s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// Progress describes a finished stage. Index is 1-based.
type Progress struct {
	Stage string
	Index int
	Total int
}

// ProgressFunc receives stage completions. Calls are serialized.
type ProgressFunc func(Progress)

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithProgress registers a stage completion callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// WithClock replaces time.Now for the analysis timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics registers the engine's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Engine) { e.metrics = newMetrics(reg) }
}

// Engine analyses repositories. It holds no per-run state and may be reused.
type Engine struct {
	cfg      config.AnalysisConfig
	log      zerolog.Logger
	progress ProgressFunc
	now      func() time.Time
	metrics  *metrics

	mu sync.Mutex
}

// NewEngine creates an engine. Unset config fields take their defaults.
func NewEngine(cfg config.AnalysisConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg.WithDefaults(),
		log: zerolog.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze profiles the repository at root. On error no partial result is
// returned.
func (e *Engine) Analyze(ctx context.Context, root string) (*ir.CodebaseAnalysis, error) {
	start := time.Now()
	abs, err := resolveRoot(root)
	if err != nil {
		e.metrics.observeRun("invalid_path")
		return nil, err
	}

	res, err := e.analyze(ctx, abs)
	if err != nil {
		e.metrics.observeRun("error")
		return nil, err
	}
	e.metrics.observeRun("ok")
	e.log.Info().
		Str("root", abs).
		Int("files", res.Structure.TotalFiles).
		Dur("elapsed", time.Since(start)).
		Msg("analysis complete")
	return res, nil
}

func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &PathError{Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", &PathError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return "", &PathError{Path: root, Err: ErrNotDirectory}
	}
	return abs, nil
}

type stage struct {
	name string
	run  func()
}

func (e *Engine) analyze(ctx context.Context, abs string) (*ir.CodebaseAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		snap *index.Snapshot
		deps *manifest.Set
		err  error
	)
	e.timed(StageWalk, func() {
		snap, deps, err = e.snapshot(abs)
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", abs, err)
	}
	e.metrics.addFiles(len(snap.Files))
	e.report(StageWalk)

	out := &ir.CodebaseAnalysis{Repository: e.identity(abs)}
	cfg := e.cfg
	stages := []stage{
		{StageStructure, func() {
			out.Structure = structure.New(e.log, cfg.DocSampleLimit).Analyze(snap, deps)
			out.FileTree = structure.AnnotateTree(snap.Tree)
		}},
		{StageTechnologies, func() {
			out.Technologies = detector.New(e.log).Detect(snap, deps)
		}},
		{StagePatterns, func() {
			out.Patterns = patterns.New(e.log, nil).Detect(snap)
		}},
		{StageExamples, func() {
			out.Examples = extractor.NewExtractor(extractor.Options{
				MaxPerCategory: cfg.MaxExamplesPerCategory,
				Logger:         e.log,
			}).Extract(snap)
		}},
		{StageQuality, func() {
			out.Quality = quality.New(e.log, cfg.QualitySampleLimit).Calculate(snap)
		}},
	}
	if err := e.runStages(ctx, stages); err != nil {
		return nil, err
	}

	e.timed(StageInsights, func() {
		out.Insights = insight.Synthesize(out, cfg.InsightLimit)
	})
	e.report(StageInsights)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out.AnalyzedAt = e.now().UTC()
	return out, nil
}

func (e *Engine) snapshot(abs string) (*index.Snapshot, *manifest.Set, error) {
	snap, err := index.NewIndexer(index.Options{
		Crawler: crawler.Options{
			MaxDepth:         e.cfg.MaxDepth,
			IgnorePatterns:   e.cfg.IgnorePatterns,
			RespectGitignore: e.cfg.GitignoreEnabled(),
			Logger:           e.log,
		},
		MaxFileSize: e.cfg.MaxFileSize(),
	}).Build(abs)
	if err != nil {
		return nil, nil, err
	}

	paths := make([]string, 0, len(snap.Files))
	for _, f := range snap.Files {
		if manifest.IsManifest(f.Path) {
			paths = append(paths, f.Path)
		}
	}
	return snap, manifest.Load(snap, paths, e.log), nil
}

// identity names the repository and, when it is a git work tree, records
// HEAD and the origin remote.
func (e *Engine) identity(abs string) ir.Repository {
	repo := ir.Repository{Name: filepath.Base(abs), Path: abs}
	info, err := git.Inspect(abs)
	switch {
	case errors.Is(err, git.ErrNotRepository):
	case err != nil:
		e.log.Debug().Err(err).Str("root", abs).Msg("repository identity unavailable")
	default:
		repo.Branch = info.Branch
		repo.Commit = info.Commit
		repo.Remote = info.Remote
	}
	return repo
}

// runStages runs the independent stages, concurrently when enabled. Each
// stage writes only its own field of the result.
func (e *Engine) runStages(ctx context.Context, stages []stage) error {
	if !e.cfg.ParallelEnabled() {
		for _, s := range stages {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.timed(s.name, s.run)
			e.report(s.name)
		}
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range stages {
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.timed(s.name, s.run)
			e.report(s.name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (e *Engine) timed(name string, fn func()) {
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	e.metrics.observeStage(name, elapsed)
	e.log.Debug().Str("stage", name).Dur("elapsed", elapsed).Msg("stage finished")
}

func (e *Engine) report(name string) {
	if e.progress == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress(Progress{Stage: name, Index: stageIndex(name), Total: len(Stages)})
}

func stageIndex(name string) int {
	for i, s := range Stages {
		if s == name {
			return i + 1
		}
	}
	return 0
}
