package logging

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew_FallsBackToDefault(t *testing.T) {
	l := New(logr.Logger{})
	if l.Logr().GetSink() == nil {
		t.Fatalf("expected default sink")
	}
}

func TestNewFromLevel(t *testing.T) {
	l, err := NewFromLevel("debug", "console")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Logr().V(1).Enabled() {
		t.Fatalf("expected debug logging enabled")
	}
	l, err = NewFromLevel("info", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Logr().V(1).Enabled() {
		t.Fatalf("expected debug logging disabled at info level")
	}
}

func TestLogger_ForwardsToSink(t *testing.T) {
	var lines []string
	base := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{})

	log := New(base).WithName("rag").WithValues("source", "README.md")
	log.Info("ingested", "chunks", 2)
	log.Error(errors.New("boom"), "store failed")
	log.Debug("hidden")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], "rag ") || !strings.Contains(lines[0], `"source"="README.md"`) || !strings.Contains(lines[0], `"chunks"=2`) {
		t.Fatalf("unexpected info line %q", lines[0])
	}
	if !strings.Contains(lines[1], `"error"="boom"`) {
		t.Fatalf("unexpected error line %q", lines[1])
	}
}
