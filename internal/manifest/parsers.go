package manifest

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

type packageJSON struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Keywords         []string          `json:"keywords"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	Scripts          map[string]string `json:"scripts"`
	Engines          map[string]string `json:"engines"`
}

func parsePackageJSON(rel, content string) (Manifest, error) {
	var pkg packageJSON
	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return Manifest{}, err
	}
	m := Manifest{
		Kind:         KindNPM,
		Name:         pkg.Name,
		Description:  pkg.Description,
		Keywords:     pkg.Keywords,
		Dependencies: map[string]string{},
		Scripts:      pkg.Scripts,
		Engine:       pkg.Engines["node"],
	}
	for _, deps := range []map[string]string{pkg.PeerDependencies, pkg.DevDependencies, pkg.Dependencies} {
		for name, version := range deps {
			m.Dependencies[name] = version
		}
	}
	return m, nil
}

type composerJSON struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Keywords    []string          `json:"keywords"`
	Require     map[string]string `json:"require"`
	RequireDev  map[string]string `json:"require-dev"`
}

func parseComposer(rel, content string) (Manifest, error) {
	var c composerJSON
	if err := json.Unmarshal([]byte(content), &c); err != nil {
		return Manifest{}, err
	}
	m := Manifest{
		Kind:         KindComposer,
		Name:         c.Name,
		Description:  c.Description,
		Keywords:     c.Keywords,
		Dependencies: map[string]string{},
		Engine:       c.Require["php"],
	}
	for _, deps := range []map[string]string{c.RequireDev, c.Require} {
		for name, version := range deps {
			m.Dependencies[name] = version
		}
	}
	return m, nil
}

var requirementSplit = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)(\[[^\]]*\])?\s*(.*)$`)

// splitRequirement splits a PEP 508 style requirement into name and constraint.
func splitRequirement(line string) (string, string, bool) {
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	m := requirementSplit.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(m[1]), strings.TrimSpace(m[3]), true
}

func parseRequirements(rel, content string) (Manifest, error) {
	m := Manifest{Kind: KindPip, Dependencies: map[string]string{}}
	for _, line := range strings.Split(content, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		if name, version, ok := splitRequirement(line); ok {
			m.Dependencies[name] = version
		}
	}
	return m, nil
}

func parsePipfile(rel, content string) (Manifest, error) {
	var pf struct {
		Packages    map[string]any `toml:"packages"`
		DevPackages map[string]any `toml:"dev-packages"`
		Requires    struct {
			PythonVersion string `toml:"python_version"`
		} `toml:"requires"`
	}
	if err := toml.Unmarshal([]byte(content), &pf); err != nil {
		return Manifest{}, err
	}
	m := Manifest{Kind: KindPipfile, Dependencies: map[string]string{}, Engine: pf.Requires.PythonVersion}
	addTOMLDeps(m.Dependencies, pf.DevPackages, true)
	addTOMLDeps(m.Dependencies, pf.Packages, true)
	return m, nil
}

type pyProject struct {
	Project struct {
		Name           string   `toml:"name"`
		Description    string   `toml:"description"`
		Keywords       []string `toml:"keywords"`
		Dependencies   []string `toml:"dependencies"`
		RequiresPython string   `toml:"requires-python"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name            string         `toml:"name"`
			Description     string         `toml:"description"`
			Keywords        []string       `toml:"keywords"`
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyProject(rel, content string) (Manifest, error) {
	var py pyProject
	if err := toml.Unmarshal([]byte(content), &py); err != nil {
		return Manifest{}, err
	}
	poetry := py.Tool.Poetry
	m := Manifest{
		Kind:         KindPyProject,
		Name:         firstNonEmpty(py.Project.Name, poetry.Name),
		Description:  firstNonEmpty(py.Project.Description, poetry.Description),
		Keywords:     append(py.Project.Keywords, poetry.Keywords...),
		Dependencies: map[string]string{},
		Engine:       py.Project.RequiresPython,
	}
	for _, req := range py.Project.Dependencies {
		if name, version, ok := splitRequirement(req); ok {
			m.Dependencies[name] = version
		}
	}
	for _, g := range poetry.Group {
		addTOMLDeps(m.Dependencies, g.Dependencies, true)
	}
	addTOMLDeps(m.Dependencies, poetry.DevDependencies, true)
	addTOMLDeps(m.Dependencies, poetry.Dependencies, true)
	if v, ok := m.Dependencies["python"]; ok {
		if m.Engine == "" {
			m.Engine = v
		}
		delete(m.Dependencies, "python")
	}
	return m, nil
}

type cargoToml struct {
	Package struct {
		Name        string   `toml:"name"`
		Description string   `toml:"description"`
		Keywords    []string `toml:"keywords"`
		RustVersion string   `toml:"rust-version"`
	} `toml:"package"`
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
	Workspace       struct {
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

func parseCargo(rel, content string) (Manifest, error) {
	var c cargoToml
	if err := toml.Unmarshal([]byte(content), &c); err != nil {
		return Manifest{}, err
	}
	m := Manifest{
		Kind:         KindCargo,
		Name:         c.Package.Name,
		Description:  c.Package.Description,
		Keywords:     c.Package.Keywords,
		Dependencies: map[string]string{},
		Engine:       c.Package.RustVersion,
	}
	addTOMLDeps(m.Dependencies, c.Workspace.Dependencies, false)
	addTOMLDeps(m.Dependencies, c.DevDependencies, false)
	addTOMLDeps(m.Dependencies, c.Dependencies, false)
	return m, nil
}

// addTOMLDeps copies a TOML dependency table. Values are either a version
// string or an inline table carrying a "version" key.
func addTOMLDeps(dst map[string]string, deps map[string]any, lower bool) {
	for name, v := range deps {
		if lower {
			name = strings.ToLower(name)
		}
		switch val := v.(type) {
		case string:
			dst[name] = val
		case map[string]any:
			if ver, ok := val["version"].(string); ok {
				dst[name] = ver
			} else {
				dst[name] = ""
			}
		default:
			dst[name] = ""
		}
	}
}

func parseGoMod(rel, content string) (Manifest, error) {
	f, err := modfile.ParseLax(rel, []byte(content), nil)
	if err != nil {
		return Manifest{}, err
	}
	m := Manifest{Kind: KindGoMod, Dependencies: map[string]string{}}
	if f.Module != nil {
		m.Name = f.Module.Mod.Path
	}
	if f.Go != nil {
		m.Engine = f.Go.Version
	}
	for _, r := range f.Require {
		m.Dependencies[r.Mod.Path] = r.Mod.Version
	}
	return m, nil
}

var gemLine = regexp.MustCompile(`(?m)^\s*gem\s+['"]([^'"]+)['"](?:\s*,\s*['"]([^'"]+)['"])?`)

func parseGemfile(rel, content string) (Manifest, error) {
	m := Manifest{Kind: KindGemfile, Dependencies: map[string]string{}}
	for _, match := range gemLine.FindAllStringSubmatch(content, -1) {
		m.Dependencies[match[1]] = match[2]
	}
	return m, nil
}

type pomXML struct {
	ArtifactID  string `xml:"artifactId"`
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Parent      struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
	} `xml:"parent"`
	Properties struct {
		JavaVersion string `xml:"java.version"`
	} `xml:"properties"`
	Dependencies []struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
	} `xml:"dependencies>dependency"`
}

func parsePom(rel, content string) (Manifest, error) {
	var p pomXML
	if err := xml.Unmarshal([]byte(content), &p); err != nil {
		return Manifest{}, err
	}
	m := Manifest{
		Kind:         KindMaven,
		Name:         firstNonEmpty(p.Name, p.ArtifactID),
		Description:  p.Description,
		Dependencies: map[string]string{},
		Engine:       p.Properties.JavaVersion,
	}
	if p.Parent.ArtifactID != "" {
		m.Dependencies[p.Parent.GroupID+":"+p.Parent.ArtifactID] = p.Parent.Version
	}
	for _, d := range p.Dependencies {
		m.Dependencies[d.GroupID+":"+d.ArtifactID] = d.Version
	}
	return m, nil
}

func parseCompose(rel, content string) (Manifest, error) {
	var doc struct {
		Services map[string]struct {
			Image string `yaml:"image"`
		} `yaml:"services"`
	}
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return Manifest{}, err
	}
	m := Manifest{Kind: KindCompose}
	for name := range doc.Services {
		m.Services = append(m.Services, name)
	}
	sort.Strings(m.Services)
	for _, name := range m.Services {
		if img := doc.Services[name].Image; img != "" {
			m.Images = append(m.Images, img)
		}
	}
	return m, nil
}

func parseDotEnv(rel, content string) (Manifest, error) {
	env, err := godotenv.Unmarshal(content)
	if err != nil {
		return Manifest{}, fmt.Errorf("dotenv: %w", err)
	}
	return Manifest{Kind: KindDotEnv, Env: env}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
