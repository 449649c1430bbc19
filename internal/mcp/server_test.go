package mcp

import (
	"testing"

	"github.com/go-logr/logr"

	"github.com/roivaz/commitforge/internal/commitgen"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/prdesc"
)

func TestNew_RegistersTools(t *testing.T) {
	log := logging.New(logr.Discard())
	srv := New(DefaultConfig(Dependencies{
		Generator: commitgen.New(nil, nil, log),
		Builder:   prdesc.NewBuilder(nil, nil, log),
	}, log))

	tools := srv.MCP.ListTools()
	for _, name := range []string{"generate_commit", "format_commit", "parse_commit_log", "pr_description"} {
		if _, ok := tools[name]; !ok {
			t.Fatalf("tool %s not registered", name)
		}
	}
	if len(tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(tools))
	}
	if srv.Handler == nil {
		t.Fatalf("expected http handler")
	}
}

func TestNew_SkipsUnknownTools(t *testing.T) {
	srv := New(Config{
		ToolAdapters: map[string]ToolAdapter{"no_such_tool": nil},
		Logger:       logging.New(logr.Discard()),
	})
	if tools := srv.MCP.ListTools(); len(tools) != 0 {
		t.Fatalf("expected no tools, got %d", len(tools))
	}
}
