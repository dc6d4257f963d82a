package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AnalysisConfig holds the knobs of a single analysis run.
type AnalysisConfig struct {
	MaxDepth               int      `yaml:"max_depth"`
	IgnorePatterns         []string `yaml:"ignore_patterns"`
	MaxExamplesPerCategory int      `yaml:"max_examples_per_category"`
	MaxFileSizeKB          int      `yaml:"max_file_size_kb"`
	QualitySampleLimit     int      `yaml:"quality_sample_limit"`
	DocSampleLimit         int      `yaml:"doc_sample_limit"`
	InsightLimit           int      `yaml:"insight_limit"`
	RespectGitignore       *bool    `yaml:"respect_gitignore"`
	Parallel               *bool    `yaml:"parallel"`
}

// GitignoreEnabled reports whether the root .gitignore should be honoured.
func (a AnalysisConfig) GitignoreEnabled() bool {
	return a.RespectGitignore == nil || *a.RespectGitignore
}

// ParallelEnabled reports whether independent stages may run concurrently.
func (a AnalysisConfig) ParallelEnabled() bool {
	return a.Parallel == nil || *a.Parallel
}

// MaxFileSize returns the per-file read limit in bytes.
func (a AnalysisConfig) MaxFileSize() int64 {
	return int64(a.MaxFileSizeKB) * 1024
}

type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Storage  struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`
}

// DefaultIgnorePatterns are skipped by the walker unless overridden.
var DefaultIgnorePatterns = []string{
	".git", ".hg", ".svn",
	"node_modules", "vendor", "bower_components",
	"dist", "build", "out", "target",
	".next", ".nuxt", ".cache", "coverage",
	"__pycache__", ".venv", "venv",
	".idea", ".vscode", "logs",
	"*.log", ".DS_Store",
}

// DefaultAnalysis returns the analysis defaults.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		MaxDepth:               10,
		IgnorePatterns:         append([]string(nil), DefaultIgnorePatterns...),
		MaxExamplesPerCategory: 5,
		MaxFileSizeKB:          1000,
		QualitySampleLimit:     200,
		DocSampleLimit:         20,
		InsightLimit:           5,
	}
}

// Default returns a configuration with every field populated.
func Default() *Config {
	cfg := &Config{Analysis: DefaultAnalysis()}
	cfg.Storage.Path = "codescope.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// LoadConfig reads a YAML config file. A missing file yields the defaults;
// unset fields are back-filled from the defaults either way.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := &Config{}

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.fillDefaults()
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if level := os.Getenv("CODESCOPE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if db := os.Getenv("CODESCOPE_DB"); db != "" {
		cfg.Storage.Path = db
	}
	if v := os.Getenv("CODESCOPE_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CODESCOPE_MAX_DEPTH: %w", err)
		}
		cfg.Analysis.MaxDepth = n
	}
	if v := os.Getenv("CODESCOPE_MAX_FILE_SIZE_KB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CODESCOPE_MAX_FILE_SIZE_KB: %w", err)
		}
		cfg.Analysis.MaxFileSizeKB = n
	}
	return nil
}

// WithDefaults returns a copy of a with unset fields taken from
// DefaultAnalysis.
func (a AnalysisConfig) WithDefaults() AnalysisConfig {
	def := DefaultAnalysis()
	if a.MaxDepth <= 0 {
		a.MaxDepth = def.MaxDepth
	}
	if a.IgnorePatterns == nil {
		a.IgnorePatterns = def.IgnorePatterns
	}
	if a.MaxExamplesPerCategory <= 0 {
		a.MaxExamplesPerCategory = def.MaxExamplesPerCategory
	}
	if a.MaxFileSizeKB <= 0 {
		a.MaxFileSizeKB = def.MaxFileSizeKB
	}
	if a.QualitySampleLimit <= 0 {
		a.QualitySampleLimit = def.QualitySampleLimit
	}
	if a.DocSampleLimit <= 0 {
		a.DocSampleLimit = def.DocSampleLimit
	}
	if a.InsightLimit <= 0 {
		a.InsightLimit = def.InsightLimit
	}
	return a
}

func (c *Config) fillDefaults() {
	def := Default()
	c.Analysis = c.Analysis.WithDefaults()
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}
