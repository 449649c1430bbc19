package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/roivaz/commitforge/internal/db"
	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/metrics"
	"github.com/roivaz/commitforge/internal/prompt"
)

const (
	DefaultTopK   = 5
	DefaultSource = "api"
)

var ErrEmptyInput = errors.New("input text is empty")

type Embedder interface {
	EmbedTexts(ctx context.Context, inputs []string) ([][]float32, error)
	Model() string
}

type Store interface {
	StoreChunks(ctx context.Context, chunks []db.RAGChunk) (int, error)
	SearchChunks(ctx context.Context, embedding []float32, limit int, minSimilarity float64) ([]db.ChunkSearchRow, error)
	ReplaceSource(ctx context.Context, source string, chunks []db.RAGChunk) (removed, written int, err error)
	CountChunks(ctx context.Context) (int, error)
}

type Config struct {
	TopK          int
	MinSimilarity float64
}

// Service stores text as embedded chunks and answers questions from the
// closest ones.
type Service struct {
	embedder Embedder
	store    Store
	gateway  llm.Gateway
	cfg      Config
	metrics  *metrics.Metrics
	log      logging.Logger
}

func NewService(embedder Embedder, store Store, gateway llm.Gateway, cfg Config, m *metrics.Metrics, log logging.Logger) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &Service{embedder: embedder, store: store, gateway: gateway, cfg: cfg, metrics: m, log: log.WithName("rag")}
}

// Ingest splits text into chunks of roughly chunkSize characters, embeds and
// stores them. It returns the number of chunks produced. Markdown sources
// are split on headings, lists and code fences first.
func (s *Service) Ingest(ctx context.Context, source, text string, chunkSize int) (int, error) {
	if strings.TrimSpace(source) == "" {
		source = DefaultSource
	}
	rows, err := s.embedChunks(ctx, source, text, chunkSize)
	if err != nil {
		return 0, err
	}
	written, err := s.store.StoreChunks(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}
	s.log.Info("ingested text", "source", source, "chunks", len(rows), "new", written, "chunkSize", ClampChunkSize(chunkSize))
	return len(rows), nil
}

// Replace swaps the chunks stored for source with the chunks of text. The
// old chunks are only removed once the new ones are embedded, so a failing
// embedding backend leaves the source untouched.
func (s *Service) Replace(ctx context.Context, source, text string, chunkSize int) (int, error) {
	if strings.TrimSpace(source) == "" {
		return 0, errors.New("source is required")
	}
	rows, err := s.embedChunks(ctx, source, text, chunkSize)
	if err != nil {
		return 0, err
	}
	removed, written, err := s.store.ReplaceSource(ctx, source, rows)
	if err != nil {
		return 0, fmt.Errorf("replace source %s: %w", source, err)
	}
	s.log.Info("replaced source", "source", source, "chunks", len(rows), "removed", removed, "new", written)
	return len(rows), nil
}

func (s *Service) embedChunks(ctx context.Context, source, text string, chunkSize int) ([]db.RAGChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	parts := newChunkerFor(source, chunkSize).Split(text)
	vectors, err := s.embedder.EmbedTexts(ctx, parts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(parts) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d chunks", len(vectors), len(parts))
	}
	rows := make([]db.RAGChunk, 0, len(parts))
	for i, part := range parts {
		rows = append(rows, db.RAGChunk{
			ID:             db.ChunkID(source, i, part),
			Source:         source,
			ChunkIndex:     i,
			ChunkText:      part,
			Embedding:      pgvector.NewVector(vectors[i]),
			EmbeddingModel: s.embedder.Model(),
		})
	}
	return rows, nil
}

// Count returns the number of stored chunks.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.CountChunks(ctx)
}

// Ask answers question using only the retrieved chunks as context.
func (s *Service) Ask(ctx context.Context, question string) (answer string, err error) {
	if s.gateway == nil {
		return "", llm.ErrDisabled
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyInput
	}
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.TypeRAG, start, err) }()

	vectors, err := s.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		return "", err
	}
	rows, err := s.store.SearchChunks(ctx, vectors[0], s.cfg.TopK, s.cfg.MinSimilarity)
	if err != nil {
		return "", fmt.Errorf("search chunks: %w", err)
	}
	passages := make([]string, 0, len(rows))
	for _, r := range rows {
		passages = append(passages, r.ChunkText)
	}
	s.log.Debug("retrieved context", "passages", len(passages))

	user := prompt.RAGQuestion(passages, question)
	s.metrics.ObservePrompt(metrics.TypeRAG, len(user), 0)
	return s.gateway.CompleteWithSystem(ctx, prompt.RAGSystem, user)
}
