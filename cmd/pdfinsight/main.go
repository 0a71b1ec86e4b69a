// Package main is the entry point for the pdfinsight server and CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dgallion1/pdfinsight/internal/api"
	"github.com/dgallion1/pdfinsight/internal/chunker"
	"github.com/dgallion1/pdfinsight/internal/config"
	"github.com/dgallion1/pdfinsight/internal/embed"
	"github.com/dgallion1/pdfinsight/internal/outline"
	"github.com/dgallion1/pdfinsight/internal/parser"
	"github.com/dgallion1/pdfinsight/internal/pipeline"
)

// version is set at build time via ldflags.
var version = "dev"

// v holds configuration from defaults, the config file, and PDFINSIGHT_* env vars.
var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "pdfinsight",
	Short: "Heading outlines and persona-driven section ranking for PDFs",
	Long: `pdfinsight reads PDFs and either extracts a title and H1-H3 outline from
font statistics, or ranks document sections and sentence windows by semantic
similarity to a query or a persona and their job.

Run "pdfinsight serve" for the HTTP API, or use the outline, search, and rank
subcommands directly on local files.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfinsight.yaml or ~/.config/pdfinsight/pdfinsight.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, outlineCmd, searchCmd, rankCmd, versionCmd)
}

func initConfig() {
	// A missing .env is fine; real environment variables win.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdfinsight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pdfinsight"))
		}
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	}
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, newLogger(cfg, os.Stderr), nil
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// app bundles the pipeline service with the instrumented embedder behind it.
type app struct {
	svc      *pipeline.Service
	embedder *embed.Instrumented
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	base, err := embed.New(ctx, embed.Config(cfg.Embed))
	if err != nil {
		return nil, err
	}
	inst := embed.NewInstrumented(base, embed.NewStats(time.Hour))

	splitter, err := chunker.NewSplitter(cfg.Splitter)
	if err != nil {
		inst.Close()
		return nil, err
	}

	overrides := outline.DefaultOverrides()
	if cfg.OverridesFile != "" {
		overrides, err = outline.LoadOverrides(cfg.OverridesFile)
		if err != nil {
			inst.Close()
			return nil, err
		}
		log.Info("loaded outline overrides", "path", cfg.OverridesFile)
	}

	svc := pipeline.NewService(
		inst,
		chunker.New(chunker.DefaultConfig(), splitter),
		outline.NewExtractor(outline.NewLinguaDetector(), overrides),
		pipeline.Options{MaxPages: cfg.MaxPages, OutlineMaxPages: cfg.OutlineMaxPages},
		log,
	)
	log.Debug("pipeline ready", "embed_backend", cfg.Embed.Backend, "model", inst.Model(), "splitter", cfg.Splitter)
	return &app{svc: svc, embedder: inst}, nil
}

func (a *app) Close() error {
	return a.embedder.Close()
}

// readSources loads local files, named by their base name.
func readSources(paths []string) ([]parser.Source, error) {
	out := make([]parser.Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, parser.Source{Name: filepath.Base(p), Data: data})
	}
	return out, nil
}

func printJSON(w io.Writer, val any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(val)
}

func main() {
	api.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
