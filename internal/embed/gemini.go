package embed

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "text-embedding-004"
	geminiMaxBatch     = 100
)

// GeminiEmbedder uses the Gemini batch embedding API.
type GeminiEmbedder struct {
	client    *genai.Client
	model     *genai.EmbeddingModel
	name      string
	batchSize int
}

func NewGeminiEmbedder(ctx context.Context, cfg Config) (*GeminiEmbedder, error) {
	cfg = cfg.withDefaults()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	name := cfg.Model
	if name == "" {
		name = defaultGeminiModel
	}
	return &GeminiEmbedder{
		client:    client,
		model:     client.EmbeddingModel(name),
		name:      name,
		batchSize: min(cfg.BatchSize, geminiMaxBatch),
	}, nil
}

func (g *GeminiEmbedder) Model() string { return g.name }

func (g *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += g.batchSize {
		end := min(start+g.batchSize, len(texts))
		batch := g.model.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}
		resp, err := g.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("gemini batch [%d:%d]: %w", start, end, err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini batch [%d:%d]: got %d embeddings", start, end, len(resp.Embeddings))
		}
		for _, e := range resp.Embeddings {
			if e == nil {
				return nil, fmt.Errorf("gemini batch [%d:%d]: empty embedding", start, end)
			}
			result = append(result, e.Values)
		}
	}
	return result, nil
}

// Close releases the client.
func (g *GeminiEmbedder) Close() error {
	return g.client.Close()
}
