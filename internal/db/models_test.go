package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestChunkID(t *testing.T) {
	a := ChunkID("notes", 0, "hello")
	if a != ChunkID("notes", 0, "hello") {
		t.Fatalf("chunk id should be deterministic")
	}
	if a == ChunkID("notes", 1, "hello") || a == ChunkID("other", 0, "hello") {
		t.Fatalf("chunk id should depend on source and index")
	}
	if len(a) != 64 {
		t.Fatalf("expected hex sha256, got %q", a)
	}
}

func TestMigrationsFS(t *testing.T) {
	entries, err := fs.ReadDir(MigrationsFS(), ".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}
	if up == 0 || up != down {
		t.Fatalf("expected paired up/down migrations, got %d up and %d down", up, down)
	}
}

func TestNewDatabase_RequiresDSN(t *testing.T) {
	if _, err := NewDatabase(Config{}); err == nil {
		t.Fatalf("expected error without DSN")
	}
}
