package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth; empty disables bearer-token checks
	APIKey string

	// Worker pool for batch outline jobs
	WorkerCount  int
	MaxQueueSize int

	// Upload and parse limits
	MaxUploadBytes  int64
	MaxPages        int
	OutlineMaxPages int

	// Job state
	JobTTL time.Duration

	Embed EmbedConfig

	// Sentence splitter: punkt or basic
	Splitter string

	// YAML file of outline override rules; empty uses the built-in rules
	OverridesFile string

	LogLevel  string
	LogFormat string
}

type EmbedConfig struct {
	Backend        string
	Endpoint       string
	Model          string
	APIKey         string
	Dimension      int
	BatchSize      int
	MaxBatchTokens int
	Timeout        time.Duration
}

// SetDefaults registers every key with its default so environment
// variables are picked up by AutomaticEnv.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("max_upload_bytes", 52428800) // 50MB
	v.SetDefault("max_pages", 30)
	v.SetDefault("outline_max_pages", 0)
	v.SetDefault("job_ttl", time.Hour)

	v.SetDefault("embed.backend", "hash")
	v.SetDefault("embed.endpoint", "")
	v.SetDefault("embed.model", "")
	v.SetDefault("embed.api_key", "")
	v.SetDefault("embed.dimension", 512)
	v.SetDefault("embed.batch_size", 32)
	v.SetDefault("embed.max_batch_tokens", 8192)
	v.SetDefault("embed.timeout", 30*time.Second)

	v.SetDefault("chunker.splitter", "punkt")
	v.SetDefault("outline.overrides_file", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

// New returns a viper instance reading PDFINSIGHT_* environment variables,
// with nested keys mapped as PDFINSIGHT_EMBED_BACKEND.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("PDFINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func Load(v *viper.Viper) Config {
	cfg := Config{
		Port:   v.GetString("port"),
		APIKey: v.GetString("api_key"),

		WorkerCount:  v.GetInt("worker_count"),
		MaxQueueSize: v.GetInt("max_queue_size"),

		MaxUploadBytes:  v.GetInt64("max_upload_bytes"),
		MaxPages:        v.GetInt("max_pages"),
		OutlineMaxPages: v.GetInt("outline_max_pages"),

		JobTTL: v.GetDuration("job_ttl"),

		Embed: EmbedConfig{
			Backend:        strings.ToLower(v.GetString("embed.backend")),
			Endpoint:       v.GetString("embed.endpoint"),
			Model:          v.GetString("embed.model"),
			APIKey:         v.GetString("embed.api_key"),
			Dimension:      v.GetInt("embed.dimension"),
			BatchSize:      v.GetInt("embed.batch_size"),
			MaxBatchTokens: v.GetInt("embed.max_batch_tokens"),
			Timeout:        v.GetDuration("embed.timeout"),
		},

		Splitter:      strings.ToLower(v.GetString("chunker.splitter")),
		OverridesFile: v.GetString("outline.overrides_file"),

		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 30
	}
	if cfg.OutlineMaxPages < 0 {
		cfg.OutlineMaxPages = 0
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.Embed.Backend {
	case "hash":
	case "http":
		if c.Embed.Endpoint == "" {
			return fmt.Errorf("embed.endpoint is required for the http backend")
		}
	case "gemini":
		if c.Embed.APIKey == "" {
			return fmt.Errorf("embed.api_key is required for the gemini backend")
		}
	default:
		return fmt.Errorf("unknown embed.backend %q", c.Embed.Backend)
	}
	switch c.Splitter {
	case "punkt", "basic":
	default:
		return fmt.Errorf("unknown chunker.splitter %q", c.Splitter)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
