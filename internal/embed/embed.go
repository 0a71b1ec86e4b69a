// Package embed turns text into vectors for relevance scoring.
package embed

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Embedder maps texts to vectors. Vectors are returned in input order.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Config selects and tunes an embedding backend.
type Config struct {
	Backend        string // hash, http, or gemini
	Endpoint       string // Base URL for the http backend
	Model          string
	APIKey         string
	Dimension      int // Vector size for the hash backend
	BatchSize      int
	MaxBatchTokens int // Estimated token budget per http request
	Timeout        time.Duration
}

func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = "hash"
	}
	if c.Dimension <= 0 {
		c.Dimension = DefaultDimension
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.MaxBatchTokens <= 0 {
		c.MaxBatchTokens = 8192
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// New builds the configured backend.
func New(ctx context.Context, cfg Config) (Embedder, error) {
	cfg = cfg.withDefaults()
	switch cfg.Backend {
	case "hash":
		return NewHashEmbedder(cfg.Dimension), nil
	case "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("embed: http backend requires an endpoint")
		}
		return NewHTTPEmbedder(cfg), nil
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embed: gemini backend requires an api key")
		}
		return NewGeminiEmbedder(ctx, cfg)
	default:
		return nil, fmt.Errorf("embed: unknown backend %q", cfg.Backend)
	}
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
