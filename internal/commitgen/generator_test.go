package commitgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
)

type stubGateway struct {
	reply  string
	err    error
	prompt string
}

func (s *stubGateway) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func (s *stubGateway) CompleteWithSystem(ctx context.Context, _, user string) (string, error) {
	return s.Complete(ctx, user)
}

func newGenerator(gw llm.Gateway) *Generator {
	return New(gw, nil, logging.New(logr.Discard()))
}

func TestGenerate_ParsesModelJSON(t *testing.T) {
	gw := &stubGateway{reply: `{"type":"feat","scope":"api","subject":"add health check","issues":["#7"]}`}
	msg := newGenerator(gw).Generate(context.Background(), Request{Repo: "svc", Files: []string{"api/h.go"}, Diff: "+ok"})

	if msg.Type != "feat" || msg.Scope != "api" || msg.Subject != "add health check" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(gw.prompt, "Repository: svc") || !strings.Contains(gw.prompt, "Author: dev") {
		t.Fatalf("prompt missing request fields:\n%s", gw.prompt)
	}
}

func TestGenerate_FallbackOnGatewayError(t *testing.T) {
	gw := &stubGateway{err: errors.New("rate limited")}
	msg := newGenerator(gw).Generate(context.Background(), Request{Files: []string{"web/app.js", "web/app.css"}})
	if msg.Type != "chore" || msg.Scope != "web" || msg.Subject != "update 2 files" {
		t.Fatalf("unexpected fallback %+v", msg)
	}
}

func TestGenerate_FallbackOnMalformedOutput(t *testing.T) {
	for _, reply := range []string{"", "I cannot help with that.", "{\"type\": \"feat\", ", `{"subject":""}`} {
		gw := &stubGateway{reply: reply}
		msg := newGenerator(gw).Generate(context.Background(), Request{Files: []string{"main.go"}})
		if msg.Subject != "update main.go" || msg.Scope != "" {
			t.Fatalf("reply %q: unexpected fallback %+v", reply, msg)
		}
	}
}

func TestGenerate_ExtractsEmbeddedJSON(t *testing.T) {
	gw := &stubGateway{reply: "Here you go:\n{\"type\":\"fix\",\"subject\":\"guard nil\"}\nDone"}
	msg := newGenerator(gw).Generate(context.Background(), Request{})
	if msg.Type != "fix" || msg.Subject != "guard nil" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestGenerate_NilGatewayFallsBack(t *testing.T) {
	msg := newGenerator(nil).Generate(context.Background(), Request{})
	if msg.Subject != "update repository files" || msg.Issues == nil {
		t.Fatalf("unexpected fallback %+v", msg)
	}
}

func TestRaw_DisabledGateway(t *testing.T) {
	if _, err := newGenerator(nil).Raw(context.Background(), Request{}); !errors.Is(err, llm.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
