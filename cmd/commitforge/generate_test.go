package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/roivaz/commitforge/internal/commit"
)

func TestWriteMessage(t *testing.T) {
	msg := commit.Message{Type: "feat", Scope: "api", Subject: "add X", Issues: []string{"#1"}}

	cases := []struct {
		format string
		want   []string
	}{
		{format: "text", want: []string{"feat(api): add X\n\n#1\n"}},
		{format: "json", want: []string{`"type": "feat"`, `"issues": [`}},
		{format: "yaml", want: []string{"type: feat\n", "subject: add X\n", "#1"}},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := writeMessage(&buf, msg, tc.format); err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.format, err)
		}
		for _, w := range tc.want {
			if !strings.Contains(buf.String(), w) {
				t.Fatalf("%s: expected %q in %q", tc.format, w, buf.String())
			}
		}
	}

	if err := writeMessage(&bytes.Buffer{}, msg, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
