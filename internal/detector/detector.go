// Package detector identifies the languages, frameworks, datastores and
// tools a repository uses, each with a confidence score and evidence.
package detector

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"codescope/internal/index"
	"codescope/internal/ir"
	"codescope/internal/manifest"

	"github.com/rs/zerolog"
)

// Detector runs technology detection over a snapshot.
type Detector struct {
	log zerolog.Logger
}

// New creates a detector.
func New(log zerolog.Logger) *Detector {
	return &Detector{log: log}
}

// languageManifests lists files that corroborate a language.
var languageManifests = map[string][]string{
	"Go":         {"go.mod"},
	"TypeScript": {"tsconfig.json"},
	"JavaScript": {"package.json"},
	"Python":     {"pyproject.toml", "requirements.txt", "Pipfile", "setup.py"},
	"Rust":       {"Cargo.toml"},
	"Ruby":       {"Gemfile"},
	"PHP":        {"composer.json"},
	"Java":       {"pom.xml", "build.gradle", "build.gradle.kts"},
	"Kotlin":     {"build.gradle.kts"},
	"Dart":       {"pubspec.yaml"},
	"Elixir":     {"mix.exs"},
	"C#":         {"*.csproj"},
	"Swift":      {"Package.swift"},
}

// Detect classifies the snapshot's technologies. Without a package manifest
// the framework and datastore lists stay empty.
func (d *Detector) Detect(snap *index.Snapshot, deps *manifest.Set) ir.Technologies {
	techs := ir.Technologies{
		Languages:  d.languages(snap, deps),
		Frameworks: []ir.Technology{},
		Datastores: []ir.Technology{},
		Tools:      []ir.Technology{},
	}

	hasManifest := deps.HasDependencyManifest()
	var frameworks, datastores, tools []ir.Technology
	for _, sig := range signatures {
		if sig.Kind != KindTool && !hasManifest {
			continue
		}
		tech, ok := evaluate(sig, snap, deps)
		if !ok {
			continue
		}
		switch sig.Kind {
		case KindFramework:
			frameworks = append(frameworks, tech)
		case KindDatastore:
			datastores = append(datastores, tech)
		default:
			tools = append(tools, tech)
		}
	}

	techs.Frameworks = Merge(frameworks)
	techs.Datastores = Merge(datastores)
	techs.Tools = Merge(tools)

	d.log.Debug().
		Int("languages", len(techs.Languages)).
		Int("frameworks", len(techs.Frameworks)).
		Int("datastores", len(techs.Datastores)).
		Int("tools", len(techs.Tools)).
		Msg("technology detection complete")
	return techs
}

func (d *Detector) languages(snap *index.Snapshot, deps *manifest.Set) []ir.Technology {
	counts := map[string]int{}
	families := map[string]index.Family{}
	for _, f := range snap.Files {
		name, fam := index.LanguageFamily(f.Path)
		if fam == index.FamilyNone {
			continue
		}
		counts[name]++
		families[name] = fam
	}

	out := make([]ir.Technology, 0, len(counts))
	for name, n := range counts {
		evidence := []string{fmt.Sprintf("%d %s file(s)", n, name)}
		corroborated := false
		for _, m := range languageManifests[name] {
			if p, ok := snap.AnyMatch("**/" + m); ok {
				corroborated = true
				evidence = append(evidence, "manifest "+p)
				break
			}
		}
		out = append(out, ir.Technology{
			Name:       name,
			Confidence: languageConfidence(families[name], n, corroborated),
			Version:    languageVersion(name, deps),
			Evidence:   evidence,
		})
	}
	sortTechnologies(out)
	return out
}

func languageVersion(name string, deps *manifest.Set) string {
	engineOf := func(kinds ...manifest.Kind) string {
		for _, k := range kinds {
			if m, ok := deps.Has(k); ok && m.Engine != "" {
				return cleanVersion(m.Engine)
			}
		}
		return ""
	}
	switch name {
	case "Go":
		return engineOf(manifest.KindGoMod)
	case "JavaScript":
		return engineOf(manifest.KindNPM)
	case "TypeScript":
		if dep, ok := deps.Lookup("typescript"); ok {
			return cleanVersion(dep.Version)
		}
	case "Python":
		return engineOf(manifest.KindPyProject, manifest.KindPipfile)
	case "Rust":
		return engineOf(manifest.KindCargo)
	case "PHP":
		return engineOf(manifest.KindComposer)
	case "Java":
		return engineOf(manifest.KindMaven)
	}
	return ""
}

// evaluate checks every signal of a signature. Confidence is the maximum
// over matched signals; evidence lists all of them.
func evaluate(sig signature, snap *index.Snapshot, deps *manifest.Set) (ir.Technology, bool) {
	tech := ir.Technology{Name: sig.Name, Evidence: []string{}}
	hit := func(conf float64, evidence string) {
		if conf > tech.Confidence {
			tech.Confidence = conf
		}
		tech.Evidence = appendUnique(tech.Evidence, evidence)
	}

	for _, name := range sig.Packages {
		if dep, ok := deps.Lookup(name); ok {
			hit(sig.PackageConfidence, fmt.Sprintf("dependency %s in %s", dep.Name, dep.Source))
			if tech.Version == "" {
				tech.Version = cleanVersion(dep.Version)
			}
		}
	}
	for _, prefix := range sig.Prefixes {
		if dep, ok := deps.LookupPrefix(prefix); ok {
			hit(sig.PackageConfidence, fmt.Sprintf("dependency %s in %s", dep.Name, dep.Source))
			if tech.Version == "" {
				tech.Version = cleanVersion(dep.Version)
			}
		}
	}
	for _, marker := range sig.Markers {
		if p, ok := snap.AnyMatch(marker); ok {
			hit(sig.MarkerConfidence, "marker file "+p)
		}
	}
	if len(sig.Images) > 0 {
		for _, img := range deps.Images() {
			if contains(sig.Images, imageName(img.Name)) {
				hit(imageConfidence, fmt.Sprintf("image %s in %s", img.Name, img.Source))
				if tech.Version == "" {
					tech.Version = imageTag(img.Name)
				}
			}
		}
	}
	if len(sig.EnvSchemes) > 0 {
		for _, env := range deps.EnvValues() {
			if contains(sig.EnvSchemes, urlScheme(env.Version)) {
				hit(envConfidence, fmt.Sprintf("connection string %s in %s", env.Name, env.Source))
			}
		}
	}

	if tech.Confidence <= 0 {
		return ir.Technology{}, false
	}
	return tech, true
}

// cleanVersion reduces a version constraint to its leading version number.
func cleanVersion(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, ", |"); i >= 0 {
		v = v[:i]
	}
	v = strings.TrimLeft(v, "^~>=<!v")
	if v == "*" || v == "latest" {
		return ""
	}
	return v
}

func imageName(ref string) string {
	ref = strings.ToLower(ref)
	if i := strings.Index(ref, "@"); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, ":"); i > strings.LastIndex(ref, "/") {
		ref = ref[:i]
	}
	ref = strings.TrimPrefix(ref, "docker.io/")
	return strings.TrimPrefix(ref, "library/")
}

func imageTag(ref string) string {
	if i := strings.LastIndex(ref, ":"); i > strings.LastIndex(ref, "/") {
		tag := ref[i+1:]
		if tag != "latest" {
			return tag
		}
	}
	return ""
}

func urlScheme(value string) string {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Names returns the technology names of a list, sorted.
func Names(lists ...[]ir.Technology) []string {
	var out []string
	for _, l := range lists {
		for _, t := range l {
			out = append(out, t.Name)
		}
	}
	sort.Strings(out)
	return out
}
