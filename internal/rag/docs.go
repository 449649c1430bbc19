package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/roivaz/commitforge/internal/logging"
)

// RepoFiles reads tracked files from a git repository.
type RepoFiles interface {
	HeadSHA(ctx context.Context) (string, error)
	ListFiles(ctx context.Context, ref string) ([]string, error)
	ShowFile(ctx context.Context, ref, path string) (string, error)
}

type replacer interface {
	Replace(ctx context.Context, source, text string, chunkSize int) (int, error)
}

// DocIngester loads documentation files from a repository into the chunk
// store, one source per file path. Re-running it replaces earlier chunks.
type DocIngester struct {
	Service   replacer
	Include   []string
	Exclude   []string
	MaxFiles  int
	ChunkSize int
	Log       logging.Logger
}

type DocStats struct {
	Ref     string
	Files   int
	Chunks  int
	Skipped int
}

var DefaultDocInclude = []string{"**/*.md", "**/*.mdx", "**/*.txt"}

// Run ingests the selected files at ref (HEAD when empty).
func (i *DocIngester) Run(ctx context.Context, repo RepoFiles, ref string) (DocStats, error) {
	if ref == "" {
		head, err := repo.HeadSHA(ctx)
		if err != nil {
			return DocStats{}, fmt.Errorf("get HEAD: %w", err)
		}
		ref = head
	}
	stats := DocStats{Ref: ref}

	files, err := repo.ListFiles(ctx, ref)
	if err != nil {
		return stats, fmt.Errorf("list files: %w", err)
	}
	include := i.Include
	if len(include) == 0 {
		include = DefaultDocInclude
	}
	selected := filterFiles(files, globsToRegexp(include), globsToRegexp(i.Exclude), i.MaxFiles)

	for _, path := range selected {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		content, err := repo.ShowFile(ctx, ref, path)
		if err != nil || strings.TrimSpace(content) == "" {
			stats.Skipped++
			continue
		}
		n, err := i.Service.Replace(ctx, path, content, i.ChunkSize)
		if err != nil {
			return stats, fmt.Errorf("ingest %s: %w", path, err)
		}
		stats.Files++
		stats.Chunks += n
		i.Log.Debug("ingested file", "path", path, "chunks", n)
	}
	i.Log.Info("document ingestion finished", "ref", ref, "files", stats.Files, "chunks", stats.Chunks, "skipped", stats.Skipped)
	return stats, nil
}

// globsToRegexp compiles path globs into one anchored expression.
// "**/" matches zero or more directories, "*" stays within one segment.
func globsToRegexp(globs []string) *regexp.Regexp {
	var parts []string
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		r := regexp.QuoteMeta(g)
		r = strings.ReplaceAll(r, `\*\*/`, "(.*/)?")
		r = strings.ReplaceAll(r, `\*\*`, ".*")
		r = strings.ReplaceAll(r, `\*`, "[^/]*")
		parts = append(parts, "^"+r+"$")
	}
	if len(parts) == 0 {
		return nil
	}
	return regexp.MustCompile(strings.Join(parts, "|"))
}

func filterFiles(files []string, include, exclude *regexp.Regexp, limit int) []string {
	var out []string
	for _, f := range files {
		if include != nil && !include.MatchString(f) {
			continue
		}
		if exclude != nil && exclude.MatchString(f) {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
