// Package embeddings turns label text into vectors for building similarity
// tables. It is only used by `studymatch matrix build`; the matching pipeline
// itself reads precomputed tables.
package embeddings

import (
	"context"
	"fmt"

	"github.com/kamusis/studymatch/internal/config"
)

// Provider embeds a batch of texts into fixed-length float vectors, one per
// input, in input order.
//
// Implementations must be deterministic for the same input text and model.
type Provider interface {
	ModelID() string
	Dim() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config contains the resolved embeddings configuration.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	BatchSize int
}

const defaultBatchSize = 64

// LoadConfig resolves embeddings config from environment variables first, then ~/.studymatch/.env.
func LoadConfig() (*Config, error) {
	keys := []string{
		"STUDYMATCH_EMBEDDINGS_PROVIDER",
		"STUDYMATCH_EMBEDDINGS_MODEL",
		"STUDYMATCH_EMBEDDINGS_API_KEY",
		"STUDYMATCH_EMBEDDINGS_BASE_URL",
	}
	vals := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := config.GetConfigValue(k)
		if err != nil {
			return nil, err
		}
		vals[k] = v
	}
	baseURL := vals["STUDYMATCH_EMBEDDINGS_BASE_URL"]
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Config{
		Provider:  vals["STUDYMATCH_EMBEDDINGS_PROVIDER"],
		Model:     vals["STUDYMATCH_EMBEDDINGS_MODEL"],
		APIKey:    vals["STUDYMATCH_EMBEDDINGS_API_KEY"],
		BaseURL:   baseURL,
		BatchSize: defaultBatchSize,
	}, nil
}

// NewFromConfig returns an embeddings provider.
func NewFromConfig(cfg *Config) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("embeddings config is nil")
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("embeddings provider is not configured (set STUDYMATCH_EMBEDDINGS_PROVIDER)")
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embeddings provider: %s", cfg.Provider)
	}
}
