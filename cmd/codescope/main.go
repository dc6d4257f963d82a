package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"codescope/internal/analysis"
	"codescope/internal/config"
	"codescope/internal/logging"
	"codescope/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:           "codescope",
		Short:         "Static analysis profile of a source repository",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	dbPath     string
	configPath string
	logLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the analysis history database (SQLite)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "codescope.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "summary", "Output format: json or summary")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Write output to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Store the analysis in the history database")
	analyzeCmd.Flags().IntVar(&analyzeMaxDepth, "max-depth", 0, "Maximum directory depth")
	analyzeCmd.Flags().IntVar(&analyzeMaxExamples, "max-examples", 0, "Maximum examples per category")
	analyzeCmd.Flags().BoolVar(&analyzeSequential, "sequential", false, "Run analysis stages one at a time")
	analyzeCmd.Flags().BoolVar(&analyzeMetrics, "metrics", false, "Print stage metrics after the analysis")

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to list")
	showCmd.Flags().StringVar(&showFile, "file", "", "Only print the stored examples taken from this file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr), nil
}

// initStore opens the history database named by the config.
func initStore(cfg *config.Config) (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Storage.Path, err)
	}
	return store, nil
}

var (
	analyzeFormat     string
	analyzeOut        string
	analyzeSave       bool
	analyzeSequential bool
	analyzeMetrics    bool

	analyzeMaxDepth    int
	analyzeMaxExamples int
)

// analysisOptions applies the analyze flags the user set on top of base.
func analysisOptions(cmd *cobra.Command, base config.AnalysisConfig) config.AnalysisConfig {
	opts := base
	if cmd.Flags().Changed("max-depth") {
		opts.MaxDepth = analyzeMaxDepth
	}
	if cmd.Flags().Changed("max-examples") {
		opts.MaxExamplesPerCategory = analyzeMaxExamples
	}
	if analyzeSequential {
		off := false
		opts.Parallel = &off
	}
	return opts
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Analyze a repository and print its profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		if analyzeFormat != "json" && analyzeFormat != "summary" {
			return fmt.Errorf("unknown format %q", analyzeFormat)
		}

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		opts := analysisOptions(cmd, cfg.Analysis)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		reg := prometheus.NewRegistry()
		engine := analysis.NewEngine(opts,
			analysis.WithLogger(log),
			analysis.WithMetrics(reg),
			analysis.WithProgress(func(p analysis.Progress) {
				fmt.Fprintln(os.Stderr, progressLine(p))
			}),
		)

		result, err := engine.Analyze(ctx, path)
		if err != nil {
			return err
		}

		var out io.Writer = os.Stdout
		if analyzeOut != "" {
			f, err := os.Create(analyzeOut)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if analyzeFormat == "json" {
			if err := writeJSON(out, result); err != nil {
				return err
			}
		} else {
			writeSummary(out, result)
		}

		if analyzeMetrics {
			if err := writeMetrics(os.Stderr, reg); err != nil {
				return err
			}
		}

		if analyzeSave {
			store, err := initStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			id, err := store.SaveAnalysis(ctx, result)
			if err != nil {
				return fmt.Errorf("failed to save analysis: %w", err)
			}
			fmt.Fprintln(os.Stderr, okStyle.Render("saved run "+id))
		}
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [path]",
	Short: "List stored analyses of a repository, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath := ""
		if len(args) > 0 {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			repoPath = abs
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), repoPath, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		writeHistory(os.Stdout, runs)
		return nil
	},
}

var showFile string

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if showFile != "" {
			examples, err := store.FindExamplesByFile(cmd.Context(), args[0], filepath.ToSlash(showFile))
			if err != nil {
				return fmt.Errorf("failed to load examples: %w", err)
			}
			return writeJSON(os.Stdout, examples)
		}

		result, err := store.LoadAnalysis(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(os.Stdout, result)
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget <run-id>",
	Short: "Delete a stored analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, okStyle.Render("deleted run "+args[0]))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the codescope version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("codescope " + version)
	},
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
