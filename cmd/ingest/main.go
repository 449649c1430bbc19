package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roivaz/commitforge/internal/config"
	"github.com/roivaz/commitforge/internal/db"
	dbmigrate "github.com/roivaz/commitforge/internal/db/migrate"
	"github.com/roivaz/commitforge/internal/gitrepo"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/rag"
)

var rootCmd = &cobra.Command{
	Use:           "ingest",
	Short:         "Load text into the RAG chunk store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Ingest documentation files tracked in a git repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, _ := cmd.Flags().GetString("repo-path")
		ref, _ := cmd.Flags().GetString("ref")
		include, _ := cmd.Flags().GetStringSlice("include")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		maxFiles, _ := cmd.Flags().GetInt("max-files")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")

		return withService(cmd.Context(), func(ctx context.Context, svc *rag.Service, log logging.Logger) error {
			ing := &rag.DocIngester{
				Service:   svc,
				Include:   include,
				Exclude:   exclude,
				MaxFiles:  maxFiles,
				ChunkSize: chunkSize,
				Log:       log,
			}
			stats, err := ing.Run(ctx, gitrepo.New(gitrepo.RepoConfig{Path: repoPath}), ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ref %s: %d files, %d chunks, %d skipped\n", stats.Ref, stats.Files, stats.Chunks, stats.Skipped)
			return nil
		})
	},
}

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Ingest one local file, replacing earlier chunks from it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if source == "" {
			source = filepath.ToSlash(args[0])
		}
		return withService(cmd.Context(), func(ctx context.Context, svc *rag.Service, _ logging.Logger) error {
			n, err := svc.Replace(ctx, source, string(content), chunkSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chunks\n", source, n)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the number of stored chunks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *rag.Service, _ logging.Logger) error {
			n, err := svc.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d chunks\n", n)
			return nil
		})
	},
}

func main() {
	config.Init(rootCmd)
	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides POSTGRES_URL)")
	rootCmd.PersistentFlags().Int("chunk-size", rag.DefaultChunkSize, "Target chunk size in characters")
	_ = viper.BindPFlag(config.KeyPostgresURL, rootCmd.PersistentFlags().Lookup("dsn"))

	docsCmd.Flags().String("repo-path", ".", "Path to the git repository")
	docsCmd.Flags().String("ref", "", "Git ref to read (default: HEAD)")
	docsCmd.Flags().StringSlice("include", rag.DefaultDocInclude, "Path globs to ingest")
	docsCmd.Flags().StringSlice("exclude", []string{"**/vendor/**", "**/node_modules/**"}, "Path globs to skip")
	docsCmd.Flags().Int("max-files", 500, "Maximum files to ingest (0 = no limit)")
	fileCmd.Flags().String("source", "", "Source name stored with the chunks (default: the path)")

	rootCmd.AddCommand(docsCmd, fileCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

// withService connects the database and embedding backend and runs fn with
// a context cancelled on SIGINT/SIGTERM. Ingestion needs no chat model.
func withService(parent context.Context, fn func(context.Context, *rag.Service, logging.Logger) error) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.NewFromLevel(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}
	if settings.PostgresURL == "" {
		return errors.New("postgres DSN must be provided via --dsn or POSTGRES_URL")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewDatabase(db.Config{DSN: settings.PostgresURL, Debug: settings.DBDebug})
	if err != nil {
		return err
	}
	defer database.Close()
	if err := dbmigrate.EnsureCurrent(ctx, database.Bun(), settings.MigrationsDir, settings.AutoMigrate); err != nil {
		return err
	}

	embedder, err := rag.NewEmbeddingClient(rag.EmbeddingConfig{
		Provider:    settings.EmbeddingProvider,
		Model:       settings.EmbeddingModel,
		BaseURL:     settings.EmbeddingBaseURL,
		APIKey:      settings.OpenAIAPIKey,
		CallTimeout: settings.LLMCallTimeout,
	}, log)
	if err != nil {
		return err
	}

	svc := rag.NewService(embedder, db.NewChunkRepository(database), nil, rag.Config{
		TopK:          settings.RAGTopK,
		MinSimilarity: settings.RAGThreshold,
	}, nil, log)
	return fn(ctx, svc, log)
}
