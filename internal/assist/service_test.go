package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
)

type recordingGateway struct {
	system, user string
	err          error
}

func (g *recordingGateway) Complete(ctx context.Context, p string) (string, error) {
	return g.CompleteWithSystem(ctx, "", p)
}

func (g *recordingGateway) CompleteWithSystem(_ context.Context, system, user string) (string, error) {
	g.system, g.user = system, user
	if g.err != nil {
		return "", g.err
	}
	return " reply \n", nil
}

func TestChat(t *testing.T) {
	gw := &recordingGateway{}
	svc := New(gw, nil, logging.New(logr.Discard()))

	out, err := svc.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "reply" {
		t.Fatalf("expected trimmed reply, got %q", out)
	}
	if !strings.HasPrefix(gw.system, "You are a concise, helpful assistant.") || gw.user != "hello" {
		t.Fatalf("unexpected prompts %q / %q", gw.system, gw.user)
	}
}

func TestSummarizeAndTranslate(t *testing.T) {
	gw := &recordingGateway{}
	svc := New(gw, nil, logging.New(logr.Discard()))

	if _, err := svc.Summarize(context.Background(), "long text", 50); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(gw.user, "at most 50 words") || gw.system != "" {
		t.Fatalf("unexpected summarize prompt %q", gw.user)
	}

	if _, err := svc.Translate(context.Background(), "bonjour", "Spanish"); err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !strings.Contains(gw.user, "to Spanish.") || !strings.Contains(gw.user, "bonjour") {
		t.Fatalf("unexpected translate prompt %q", gw.user)
	}
}

func TestErrors(t *testing.T) {
	disabled := New(nil, nil, logging.New(logr.Discard()))
	if disabled.Enabled() {
		t.Fatalf("expected disabled service")
	}
	if _, err := disabled.Chat(context.Background(), "hi"); !errors.Is(err, llm.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	svc := New(&recordingGateway{}, nil, logging.New(logr.Discard()))
	if _, err := svc.Summarize(context.Background(), " ", 0); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	failing := New(&recordingGateway{err: errors.New("boom")}, nil, logging.New(logr.Discard()))
	if _, err := failing.Chat(context.Background(), "hi"); err == nil {
		t.Fatalf("expected gateway error")
	}
}
