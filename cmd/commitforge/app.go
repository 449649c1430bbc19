package main

import (
	"context"
	"fmt"

	"github.com/roivaz/commitforge/internal/config"
	"github.com/roivaz/commitforge/internal/db"
	dbmigrate "github.com/roivaz/commitforge/internal/db/migrate"
	"github.com/roivaz/commitforge/internal/github"
	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/media"
	"github.com/roivaz/commitforge/internal/metrics"
	"github.com/roivaz/commitforge/internal/rag"
)

// app carries the pieces every subcommand needs.
type app struct {
	settings config.Settings
	log      logging.Logger
	gateway  llm.Gateway
}

func newApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.NewFromLevel(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return nil, err
	}
	gateway, err := llm.New(llm.Config{
		Provider:     settings.LLMProvider,
		Model:        settings.LLMModel,
		BaseURL:      settings.LLMBaseURL,
		OpenAIKey:    settings.OpenAIAPIKey,
		AnthropicKey: settings.AnthropicAPIKey,
		Temperature:  settings.LLMTemperature,
		CallTimeout:  settings.LLMCallTimeout,
	}, log)
	if err != nil {
		return nil, err
	}
	return &app{settings: settings, log: log, gateway: gateway}, nil
}

func (a *app) github() *github.Client {
	return github.NewClient(a.settings.GitHubToken, a.log)
}

func (a *app) media(m *metrics.Metrics) *media.Service {
	if !a.settings.MediaEnabled {
		a.log.Info("media service disabled", "reason", "media_enabled=false")
		return nil
	}
	return media.New(media.Config{
		APIKey:             a.settings.OpenAIAPIKey,
		ImageModel:         a.settings.ImageModel,
		TranscriptionModel: a.settings.TranscriptionModel,
		SpeechModel:        a.settings.SpeechModel,
		CallTimeout:        a.settings.LLMCallTimeout,
	}, m, a.log)
}

// rag connects the vector store and returns nil when RAG cannot run:
// no database configured or no model gateway.
func (a *app) rag(ctx context.Context, m *metrics.Metrics) (*rag.Service, *db.Database, error) {
	if a.settings.PostgresURL == "" || a.gateway == nil {
		a.log.Info("rag disabled", "database", a.settings.PostgresURL != "", "gateway", a.gateway != nil)
		return nil, nil, nil
	}
	database, err := db.NewDatabase(db.Config{DSN: a.settings.PostgresURL, Debug: a.settings.DBDebug})
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Ping(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), a.settings.MigrationsDir, a.settings.AutoMigrate); err != nil {
		database.Close()
		return nil, nil, err
	}

	embedder, err := rag.NewEmbeddingClient(rag.EmbeddingConfig{
		Provider:    a.settings.EmbeddingProvider,
		Model:       a.settings.EmbeddingModel,
		BaseURL:     a.settings.EmbeddingBaseURL,
		APIKey:      a.settings.OpenAIAPIKey,
		CallTimeout: a.settings.LLMCallTimeout,
	}, a.log)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	svc := rag.NewService(embedder, db.NewChunkRepository(database), a.gateway, rag.Config{
		TopK:          a.settings.RAGTopK,
		MinSimilarity: a.settings.RAGThreshold,
	}, m, a.log)
	return svc, database, nil
}
