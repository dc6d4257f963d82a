// Package manifest reads dependency manifests (package.json, go.mod,
// Cargo.toml, ...) into a uniform dependency view.
package manifest

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Kind identifies the manifest format.
type Kind string

const (
	KindNPM       Kind = "npm"
	KindComposer  Kind = "composer"
	KindPip       Kind = "pip"
	KindPipfile   Kind = "pipfile"
	KindPyProject Kind = "pyproject"
	KindCargo     Kind = "cargo"
	KindGoMod     Kind = "gomod"
	KindGemfile   Kind = "gemfile"
	KindMaven     Kind = "maven"
	KindCompose   Kind = "compose"
	KindDotEnv    Kind = "dotenv"
)

// ParseError marks a manifest that could not be parsed. Its contents are
// treated as absent.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Manifest is the normalised content of one manifest file.
type Manifest struct {
	Path         string
	Kind         Kind
	Name         string
	Description  string
	Keywords     []string
	Dependencies map[string]string // name -> version constraint
	Scripts      map[string]string
	Images       []string          // container images (compose files)
	Services     []string          // service names (compose files)
	Env          map[string]string // variables (.env files)
	Engine       string            // runtime requirement: Node engine, Go directive, requires-python
}

// Dependency is a resolved dependency hit.
type Dependency struct {
	Name    string
	Version string
	Source  string // manifest path
}

// Source is the minimal view of a repository the loader needs.
type Source interface {
	ReadFile(rel string) (string, error)
}

// Set is every manifest found in a repository, in path order.
type Set struct {
	Manifests []Manifest
}

type parser func(rel, content string) (Manifest, error)

var parsers = map[string]parser{
	"package.json":        parsePackageJSON,
	"composer.json":       parseComposer,
	"Pipfile":             parsePipfile,
	"pyproject.toml":      parsePyProject,
	"Cargo.toml":          parseCargo,
	"go.mod":              parseGoMod,
	"Gemfile":             parseGemfile,
	"pom.xml":             parsePom,
	"docker-compose.yml":  parseCompose,
	"docker-compose.yaml": parseCompose,
	"compose.yml":         parseCompose,
	"compose.yaml":        parseCompose,
	".env":                parseDotEnv,
	".env.example":        parseDotEnv,
	".env.sample":         parseDotEnv,
}

// parserFor resolves the parser for rel. Any requirements*.txt file is a pip
// requirements list.
func parserFor(rel string) (parser, bool) {
	base := path.Base(rel)
	if p, ok := parsers[base]; ok {
		return p, true
	}
	if strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt") {
		return parseRequirements, true
	}
	return nil, false
}

// MaxDepth is the deepest directory level searched for manifests.
const MaxDepth = 3

// IsManifest reports whether rel names a recognised manifest file.
func IsManifest(rel string) bool {
	_, ok := parserFor(rel)
	return ok
}

// Load parses every recognised manifest among paths. Malformed manifests
// are logged and skipped.
func Load(src Source, paths []string, log zerolog.Logger) *Set {
	set := &Set{}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	for _, rel := range sorted {
		parse, ok := parserFor(rel)
		if !ok || strings.Count(rel, "/") >= MaxDepth {
			continue
		}
		content, err := src.ReadFile(rel)
		if err != nil {
			log.Debug().Err(err).Str("manifest", rel).Msg("skipping unreadable manifest")
			continue
		}
		m, err := parse(rel, content)
		if err != nil {
			log.Debug().Err(&ParseError{Path: rel, Err: err}).Msg("ignoring malformed manifest")
			continue
		}
		m.Path = rel
		set.Manifests = append(set.Manifests, m)
	}
	return set
}

// Empty reports whether no manifest was loaded.
func (s *Set) Empty() bool {
	return s == nil || len(s.Manifests) == 0
}

// Lookup finds a dependency by exact name across all manifests.
func (s *Set) Lookup(name string) (Dependency, bool) {
	if s == nil {
		return Dependency{}, false
	}
	for _, m := range s.Manifests {
		if v, ok := m.Dependencies[name]; ok {
			return Dependency{Name: name, Version: v, Source: m.Path}, true
		}
	}
	return Dependency{}, false
}

// LookupPrefix finds the first dependency whose name starts with prefix.
func (s *Set) LookupPrefix(prefix string) (Dependency, bool) {
	if s == nil {
		return Dependency{}, false
	}
	for _, m := range s.Manifests {
		names := make([]string, 0, len(m.Dependencies))
		for n := range m.Dependencies {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if strings.HasPrefix(n, prefix) {
				return Dependency{Name: n, Version: m.Dependencies[n], Source: m.Path}, true
			}
		}
	}
	return Dependency{}, false
}

// Has reports whether any manifest of the given kind was loaded.
func (s *Set) Has(kind Kind) (Manifest, bool) {
	if s == nil {
		return Manifest{}, false
	}
	for _, m := range s.Manifests {
		if m.Kind == kind {
			return m, true
		}
	}
	return Manifest{}, false
}

// Images returns every container image referenced by compose files.
func (s *Set) Images() []Dependency {
	var out []Dependency
	if s == nil {
		return out
	}
	for _, m := range s.Manifests {
		for _, img := range m.Images {
			out = append(out, Dependency{Name: img, Source: m.Path})
		}
	}
	return out
}

// EnvValues returns every variable from .env files as name=value hits.
func (s *Set) EnvValues() []Dependency {
	var out []Dependency
	if s == nil {
		return out
	}
	for _, m := range s.Manifests {
		keys := make([]string, 0, len(m.Env))
		for k := range m.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, Dependency{Name: k, Version: m.Env[k], Source: m.Path})
		}
	}
	return out
}

// Description returns the first non-empty project description.
func (s *Set) Description() string {
	if s == nil {
		return ""
	}
	for _, m := range s.Manifests {
		if strings.TrimSpace(m.Description) != "" {
			return m.Description
		}
	}
	return ""
}

// Keywords returns the union of declared project keywords.
func (s *Set) Keywords() []string {
	if s == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, m := range s.Manifests {
		for _, k := range m.Keywords {
			if k != "" && !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

// HasDependencyManifest reports whether a package manifest (as opposed to
// compose or .env files) was loaded.
func (s *Set) HasDependencyManifest() bool {
	if s == nil {
		return false
	}
	for _, m := range s.Manifests {
		if m.Kind != KindCompose && m.Kind != KindDotEnv {
			return true
		}
	}
	return false
}
