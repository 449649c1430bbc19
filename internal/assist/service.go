package assist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/metrics"
	"github.com/roivaz/commitforge/internal/prompt"
)

var ErrEmptyInput = errors.New("input text is empty")

// Service covers the free-form text endpoints: chat, summarize, translate.
type Service struct {
	gateway llm.Gateway
	metrics *metrics.Metrics
	log     logging.Logger
}

func New(gateway llm.Gateway, m *metrics.Metrics, log logging.Logger) *Service {
	return &Service{gateway: gateway, metrics: m, log: log.WithName("assist")}
}

// Enabled reports whether a model backend is configured.
func (s *Service) Enabled() bool { return s.gateway != nil }

func (s *Service) Chat(ctx context.Context, input string) (string, error) {
	return s.call(ctx, metrics.TypeChat, prompt.ChatSystem, input)
}

func (s *Service) Summarize(ctx context.Context, text string, maxWords int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	return s.call(ctx, metrics.TypeSummarize, "", prompt.Summarize(text, maxWords))
}

func (s *Service) Translate(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	return s.call(ctx, metrics.TypeTranslate, "", prompt.Translate(text, lang))
}

func (s *Service) call(ctx context.Context, typ, system, user string) (string, error) {
	if s.gateway == nil {
		return "", llm.ErrDisabled
	}
	if strings.TrimSpace(user) == "" {
		return "", ErrEmptyInput
	}
	s.metrics.ObservePrompt(typ, len(user), 0)
	start := time.Now()

	var (
		out string
		err error
	)
	if system != "" {
		out, err = s.gateway.CompleteWithSystem(ctx, system, user)
	} else {
		out, err = s.gateway.Complete(ctx, user)
	}
	s.metrics.Observe(typ, start, err)
	if err != nil {
		s.log.Error(err, "model call failed", "type", typ)
		return "", err
	}
	return strings.TrimSpace(out), nil
}
