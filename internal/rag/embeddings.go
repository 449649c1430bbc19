package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/roivaz/commitforge/internal/logging"
)

// embeddingBackend is satisfied by the langchaingo openai and ollama models.
type embeddingBackend interface {
	CreateEmbedding(ctx context.Context, inputs []string) ([][]float32, error)
}

type EmbeddingConfig struct {
	Provider    string // openai | ollama
	Model       string
	BaseURL     string
	APIKey      string
	CallTimeout time.Duration
}

// EmbeddingClient turns texts into vectors.
type EmbeddingClient struct {
	model   string
	backend embeddingBackend
	to      time.Duration
	log     logging.Logger
}

func NewEmbeddingClient(cfg EmbeddingConfig, log logging.Logger) (*EmbeddingClient, error) {
	var (
		backend embeddingBackend
		err     error
	)
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, errors.New("openai embeddings require an api key")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithEmbeddingModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		backend, err = openai.New(opts...)
	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		}
		if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
			opts = append(opts, ollama.WithServerURL(trimmed))
		}
		backend, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	return newEmbeddingClient(backend, cfg.Model, cfg.CallTimeout, log), nil
}

func newEmbeddingClient(backend embeddingBackend, model string, timeout time.Duration, log logging.Logger) *EmbeddingClient {
	return &EmbeddingClient{model: model, backend: backend, to: timeout, log: log.WithName("embeddings")}
}

func (c *EmbeddingClient) Model() string { return c.model }

func (c *EmbeddingClient) EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided for embedding")
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	start := time.Now()

	vectors, err := c.backend.CreateEmbedding(ctx, inputs)
	if err != nil {
		annotated := c.annotateError(err)
		c.log.Error(annotated, "embedding failed", "inputs", len(inputs), "elapsed", time.Since(start).String())
		return nil, fmt.Errorf("create embedding: %w", annotated)
	}
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("create embedding: got %d vectors for %d inputs", len(vectors), len(inputs))
	}
	c.log.Debug("embedded inputs", "inputs", len(inputs), "model", c.model, "elapsed", time.Since(start).String())
	return vectors, nil
}

func (c *EmbeddingClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}

func (c *EmbeddingClient) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("embedding call timed out after %s: %w", c.to, err)
	}
	return err
}
