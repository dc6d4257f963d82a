// Package structure infers how a repository is organised: its annotated
// file tree, project type, architecture, build tooling and documentation.
package structure

import (
	"fmt"
	"path"
	"strings"

	"codescope/internal/index"
	"codescope/internal/ir"
	"codescope/internal/manifest"

	"github.com/rs/zerolog"
)

// Analyzer runs structure analysis over a snapshot.
type Analyzer struct {
	log            zerolog.Logger
	docSampleLimit int
}

// New creates an analyzer that samples at most docSampleLimit source files
// for comment density.
func New(log zerolog.Logger, docSampleLimit int) *Analyzer {
	return &Analyzer{log: log, docSampleLimit: docSampleLimit}
}

// Analyze summarises the structure of the snapshot.
func (a *Analyzer) Analyze(snap *index.Snapshot, deps *manifest.Set) ir.Structure {
	s := ir.Structure{
		ProjectType:      ProjectType(snap, deps),
		Architecture:     Architecture(snap, deps),
		BuildSystems:     BuildSystems(snap),
		PackageManager:   PackageManager(snap),
		Documentation:    a.documentation(snap, deps),
		EntryPoints:      []string{},
		ConfigFiles:      []string{},
		TestDirectories:  []string{},
		TotalFiles:       len(snap.Files),
		TotalDirectories: len(snap.Dirs),
	}

	for _, f := range snap.Files {
		base := path.Base(f.Path)
		if isEntryPoint(f.Path) {
			s.EntryPoints = append(s.EntryPoints, f.Path)
		}
		if configFile.MatchString(base) {
			s.ConfigFiles = append(s.ConfigFiles, f.Path)
		}
	}
	for _, d := range snap.Dirs {
		if testDir.MatchString(path.Base(d)) {
			s.TestDirectories = append(s.TestDirectories, d)
		}
	}

	a.log.Debug().
		Str("project_type", s.ProjectType).
		Str("architecture", s.Architecture).
		Str("documentation", s.Documentation.Quality).
		Msg("structure analysis complete")
	return s
}

func isEntryPoint(rel string) bool {
	if entryPointFile.MatchString(path.Base(rel)) {
		return true
	}
	for _, re := range entryPointPaths {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// ProjectType picks the project category with the most indicator hits.
// Frontend and backend evidence together make a fullstack project.
func ProjectType(snap *index.Snapshot, deps *manifest.Set) string {
	scores := map[string]int{}
	best, bestScore := typeUnknown, 0
	for _, ind := range projectTypes {
		n := ind.count(snap, deps)
		scores[ind.Name] = n
		if n > bestScore {
			best, bestScore = ind.Name, n
		}
	}
	if (best == typeFrontend || best == typeBackend) && scores[typeFrontend] > 0 && scores[typeBackend] > 0 {
		return typeFull
	}
	return best
}

// Architecture picks the architecture style with the most indicators,
// provided it reaches the minimum; otherwise the project is a monolith.
func Architecture(snap *index.Snapshot, deps *manifest.Set) string {
	best, bestScore := archMonolith, minArchitectureIndicators-1
	for _, ind := range architectures {
		n := ind.count(snap, deps)
		if ind.Name == "microservices" && composeServices(deps) >= minComposeServices {
			n++
		}
		if n > bestScore {
			best, bestScore = ind.Name, n
		}
	}
	return best
}

func composeServices(deps *manifest.Set) int {
	if deps == nil {
		return 0
	}
	n := 0
	for _, m := range deps.Manifests {
		if m.Kind == manifest.KindCompose && len(m.Services) > n {
			n = len(m.Services)
		}
	}
	return n
}

// BuildSystems lists the build systems whose configuration files exist.
func BuildSystems(snap *index.Snapshot) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, bs := range buildSystems {
		if seen[bs.Name] {
			continue
		}
		if _, ok := snap.AnyMatch(bs.Globs...); ok {
			seen[bs.Name] = true
			out = append(out, bs.Name)
		}
	}
	return out
}

// PackageManager returns the highest-priority package manager found, or
// "unknown".
func PackageManager(snap *index.Snapshot) string {
	for _, pm := range packageManagers {
		if _, ok := snap.AnyMatch(pm.Globs...); ok {
			return pm.Name
		}
	}
	return typeUnknown
}

func (a *Analyzer) documentation(snap *index.Snapshot, deps *manifest.Set) ir.Documentation {
	doc := ir.Documentation{Signals: []string{}}
	add := func(points int, signal string) {
		doc.Score += points
		doc.Signals = append(doc.Signals, signal)
	}

	if rootFileMatching(snap, readme.MatchString) {
		add(readmePoints, "README")
	}
	for _, sig := range auxiliaryDocs {
		found := false
		if sig.File != nil {
			found = rootFileMatching(snap, sig.File.MatchString)
		}
		for _, d := range sig.Dir {
			found = found || snap.HasDir(d)
		}
		if found {
			add(1, sig.Name)
		}
	}

	density := a.commentDensity(snap)
	if density > commentDensityLow {
		add(1, fmt.Sprintf("comment density %.0f%%", density*100))
	}
	if density > commentDensityHigh {
		add(1, "comment density above 20%")
	}
	if deps.Description() != "" {
		add(1, "project description")
	}
	if len(deps.Keywords()) > 0 {
		add(1, "project keywords")
	}

	switch {
	case doc.Score >= docExcellent:
		doc.Quality = "excellent"
	case doc.Score >= docGood:
		doc.Quality = "good"
	case doc.Score >= docModerate:
		doc.Quality = "moderate"
	default:
		doc.Quality = "poor"
	}
	return doc
}

func rootFileMatching(snap *index.Snapshot, match func(string) bool) bool {
	for _, f := range snap.Files {
		if !strings.Contains(f.Path, "/") && match(f.Path) {
			return true
		}
	}
	return false
}

// commentDensity is the share of comment lines across a bounded sample of
// source files with a known comment style.
func (a *Analyzer) commentDensity(snap *index.Snapshot) float64 {
	var total, comments, sampled int
	for _, f := range snap.SourceFiles() {
		if a.docSampleLimit > 0 && sampled >= a.docSampleLimit {
			break
		}
		style := index.CommentStyleOf(f.Path)
		if style == index.CommentNone {
			continue
		}
		content, err := snap.ReadFile(f.Path)
		if err != nil {
			continue
		}
		sampled++
		for _, line := range index.SplitLines(content) {
			total++
			if index.IsCommentLine(line, style) {
				comments++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(comments) / float64(total)
}
