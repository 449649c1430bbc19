package commitgen

import (
	"context"
	"time"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/metrics"
	"github.com/roivaz/commitforge/internal/prompt"
)

const rawPreviewChars = 500

type Request struct {
	Repo   string   `json:"repo"`
	Author string   `json:"author"`
	Files  []string `json:"files"`
	Diff   string   `json:"diff"`
}

// Generator turns a change description into a commit message. It never fails:
// any gateway or decoding problem degrades to commit.Fallback.
type Generator struct {
	gateway llm.Gateway
	metrics *metrics.Metrics
	log     logging.Logger
}

func New(gateway llm.Gateway, m *metrics.Metrics, log logging.Logger) *Generator {
	return &Generator{gateway: gateway, metrics: m, log: log.WithName("commitgen")}
}

func (g *Generator) Generate(ctx context.Context, req Request) commit.Message {
	files := req.Files
	if files == nil {
		files = []string{}
	}
	log := g.log.WithValues("repo", req.Repo, "files", len(files))

	raw, err := g.Raw(ctx, req)
	if err != nil {
		log.Error(err, "model call failed, using fallback commit")
		return commit.Fallback(files)
	}

	msg, err := commit.Decode(raw)
	if err != nil {
		log.Info("unparseable model output, using fallback commit", "error", err.Error(), "raw", preview(raw))
		return commit.Fallback(files)
	}
	log.Debug("commit generated", "type", msg.Type, "scope", msg.Scope)
	return msg
}

// Raw returns the unprocessed model output for req.
func (g *Generator) Raw(ctx context.Context, req Request) (string, error) {
	if g.gateway == nil {
		return "", llm.ErrDisabled
	}
	p := prompt.Commit(prompt.CommitInput{Repo: req.Repo, Author: req.Author, Files: req.Files, Diff: req.Diff})
	if g.metrics != nil {
		g.metrics.ObservePrompt(metrics.TypeCommit, len(p), prompt.EstimateTokens(p))
	}
	g.log.Debug("built commit prompt", "chars", len(p))

	start := time.Now()
	raw, err := g.gateway.Complete(ctx, p)
	g.metrics.Observe(metrics.TypeCommit, start, err)
	return raw, err
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= rawPreviewChars {
		return s
	}
	return string(r[:rawPreviewChars]) + "..."
}
