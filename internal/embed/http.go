package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPEmbedder calls an OpenAI-compatible /v1/embeddings endpoint. This
// covers vLLM, Ollama, text-embeddings-inference and OpenAI itself.
type HTTPEmbedder struct {
	endpoint       string
	model          string
	apiKey         string
	batchSize      int
	maxBatchTokens int
	client         *http.Client
}

func NewHTTPEmbedder(cfg Config) *HTTPEmbedder {
	cfg = cfg.withDefaults()
	return &HTTPEmbedder{
		endpoint:       strings.TrimRight(cfg.Endpoint, "/"),
		model:          cfg.Model,
		apiKey:         cfg.APIKey,
		batchSize:      cfg.BatchSize,
		maxBatchTokens: cfg.MaxBatchTokens,
		client:         &http.Client{Timeout: cfg.Timeout},
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPEmbedder) Model() string { return c.model }

func (c *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	result := make([][]float32, 0, len(texts))
	for _, b := range c.batches(texts) {
		vecs, err := c.callAPI(ctx, texts[b[0]:b[1]])
		if err != nil {
			return nil, fmt.Errorf("batch [%d:%d]: %w", b[0], b[1], err)
		}
		result = append(result, vecs...)
	}
	return result, nil
}

// batches splits texts into [start, end) ranges bounded by both the batch
// size and the estimated token budget. A single oversized text gets its own
// batch.
func (c *HTTPEmbedder) batches(texts []string) [][2]int {
	var out [][2]int
	start, tokens := 0, 0
	for i, t := range texts {
		n := EstimateTokens(t)
		full := i-start >= c.batchSize || (i > start && tokens+n > c.maxBatchTokens)
		if full {
			out = append(out, [2]int{start, i})
			start, tokens = i, 0
		}
		tokens += n
	}
	return append(out, [2]int{start, len(texts)})
}

func (c *HTTPEmbedder) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp embedResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("embedding api error: %s", apiResp.Error.Message)
	}

	vecs := make([][]float32, len(texts))
	for _, d := range apiResp.Data {
		if d.Index >= 0 && d.Index < len(vecs) {
			vecs[d.Index] = d.Embedding
		}
	}
	for i, v := range vecs {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input index %d", i)
		}
	}
	return vecs, nil
}

// Close releases idle connections.
func (c *HTTPEmbedder) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// EstimateTokens approximates the token count of text (~1.33 tokens per word).
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * 1.33)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
