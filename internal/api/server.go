package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/roivaz/commitforge/internal/assist"
	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/commitgen"
	"github.com/roivaz/commitforge/internal/github"
	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/metrics"
	"github.com/roivaz/commitforge/internal/prdesc"
)

const maxUploadBytes = 32 << 20

type CommitGenerator interface {
	Generate(ctx context.Context, req commitgen.Request) commit.Message
	Raw(ctx context.Context, req commitgen.Request) (string, error)
}

type PRBuilder interface {
	Build(ctx context.Context, commits []commit.Message, polish bool) string
}

type PullRequestSource interface {
	PullRequestCommits(ctx context.Context, repo github.Repository, number int) ([]commit.Message, error)
}

type Assistant interface {
	Chat(ctx context.Context, input string) (string, error)
	Summarize(ctx context.Context, text string, maxWords int) (string, error)
	Translate(ctx context.Context, text, lang string) (string, error)
}

type MediaService interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (string, error)
	Speak(ctx context.Context, text, voice string) ([]byte, error)
}

type RAGService interface {
	Ingest(ctx context.Context, source, text string, chunkSize int) (int, error)
	Ask(ctx context.Context, question string) (string, error)
}

// Services holds the backends the handlers call. Media, RAG and GitHub may
// be nil; the matching endpoints then answer 503.
type Services struct {
	Gateway llm.Gateway
	Commits CommitGenerator
	PRs     PRBuilder
	GitHub  PullRequestSource
	Assist  Assistant
	Media   MediaService
	RAG     RAGService
	Metrics *metrics.Metrics
	MCP     http.Handler
}

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Server struct {
	router *chi.Mux
	svc    Services
	log    logging.Logger
}

func NewServer(svc Services, opts Options, log logging.Logger) *Server {
	if svc.PRs == nil {
		svc.PRs = prdesc.NewBuilder(svc.Gateway, svc.Metrics, log)
	}
	if svc.Assist == nil {
		svc.Assist = assist.New(svc.Gateway, svc.Metrics, log)
	}
	if svc.Commits == nil {
		svc.Commits = commitgen.New(svc.Gateway, svc.Metrics, log)
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	s := &Server{router: r, svc: svc, log: log.WithName("api")}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ping-openai", s.handlePing)
	s.router.Post("/debug-generate-raw", s.handleDebugRaw)
	s.router.Post("/generate-commit", s.handleGenerateCommit)
	s.router.Post("/generate-commit-text", s.handleGenerateCommitText)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/commit/format", s.handleFormatCommit)
		r.Post("/commit/parse-log", s.handleParseLog)
		r.Post("/pr-description", s.handlePRDescription)
		r.Post("/pr-description/github", s.handlePRDescriptionGitHub)

		r.Post("/chat", s.handleChat)
		r.Post("/summarize", s.handleSummarize)
		r.Post("/translate", s.handleTranslate)

		r.Post("/image", s.handleImage)
		r.Post("/audio/transcribe", s.handleTranscribe)
		r.Post("/audio/tts", s.handleTTS)

		r.Post("/rag/ingest", s.handleRAGIngest)
		r.Post("/rag/ask", s.handleRAGAsk)
	})

	if s.svc.Metrics != nil {
		s.router.Handle("/metrics", s.svc.Metrics.Handler())
	}
	if s.svc.MCP != nil {
		s.router.Handle("/mcp/jsonrpc", s.svc.MCP)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "ok")
}
