package rag

import (
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize = 800
	MinChunkSize     = 400
	MaxChunkSize     = 1600
)

// ClampChunkSize maps a requested chunk size into [MinChunkSize, MaxChunkSize].
// Zero or negative means DefaultChunkSize.
func ClampChunkSize(size int) int {
	if size <= 0 {
		return DefaultChunkSize
	}
	return max(MinChunkSize, min(MaxChunkSize, size))
}

var (
	textSeparators     = []string{"\n\n", "\n", ". ", " ", ""}
	markdownSeparators = []string{
		"\n```",
		"\n# ", "\n## ", "\n### ",
		"\n- ", "\n* ",
		"\n\n", "\n",
		" ", "",
	}
)

type chunker struct {
	s textsplitter.RecursiveCharacter
}

func newChunker(size int) chunker {
	return newChunkerWith(textSeparators, size)
}

// newChunkerFor picks markdown-aware separators when source names a
// Markdown file.
func newChunkerFor(source string, size int) chunker {
	if isMarkdown(source) {
		return newChunkerWith(markdownSeparators, size)
	}
	return newChunker(size)
}

func newChunkerWith(separators []string, size int) chunker {
	return chunker{
		s: textsplitter.NewRecursiveCharacter(
			textsplitter.WithSeparators(separators),
			textsplitter.WithChunkSize(ClampChunkSize(size)),
			textsplitter.WithChunkOverlap(0),
		),
	}
}

func isMarkdown(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".mdx")
}

// Split returns the trimmed, non-blank chunks of text.
func (c chunker) Split(text string) []string {
	parts, err := c.s.SplitText(text)
	if err != nil || len(parts) == 0 {
		parts = []string{text}
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
