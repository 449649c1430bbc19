package gitrepo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/roivaz/commitforge/internal/commit"
)

func TestSplitLines(t *testing.T) {
	got := splitLines("a.go\n\n  b/c.go \n")
	if !reflect.DeepEqual(got, []string{"a.go", "b/c.go"}) {
		t.Fatalf("unexpected lines %v", got)
	}
	if got := splitLines(""); len(got) != 0 {
		t.Fatalf("expected no lines, got %v", got)
	}
}

func TestRepo_StagedChangesAndLog(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	ctx := context.Background()
	dir := t.TempDir()
	repo := New(RepoConfig{Path: dir})
	mustRun(t, repo, "init", "-q")

	write(t, filepath.Join(dir, "pkg", "a.go"), "package pkg\n")
	mustRun(t, repo, "add", ".")

	files, err := repo.StagedFiles(ctx)
	if err != nil {
		t.Fatalf("staged files: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"pkg/a.go"}) {
		t.Fatalf("unexpected staged files %v", files)
	}
	diff, err := repo.StagedDiff(ctx)
	if err != nil {
		t.Fatalf("staged diff: %v", err)
	}
	if !strings.Contains(diff, "+package pkg") {
		t.Fatalf("unexpected diff %q", diff)
	}

	if _, err := repo.Commit(ctx, "feat(pkg): add a\n\nFirst file.\n\n#1\n"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	base, err := repo.HeadSHA(ctx)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	write(t, filepath.Join(dir, "README.md"), "hi\n")
	mustRun(t, repo, "add", ".")
	if _, err := repo.Commit(ctx, "docs: readme"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	write(t, filepath.Join(dir, "b.txt"), "b\n")
	mustRun(t, repo, "add", ".")
	if _, err := repo.Commit(ctx, "fix: b\n\nBREAKING CHANGE: new b"); err != nil {
		t.Fatalf("commit: %v", err)
	}

	log, err := repo.CommitLog(ctx, base+"..HEAD")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	commits := commit.ParseLog(log)
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d: %q", len(commits), log)
	}
	if commits[0].Type != "docs" || commits[1].Type != "fix" || commits[1].BreakingChange != "new b" {
		t.Fatalf("unexpected commits %+v", commits)
	}

	tracked, err := repo.ListFiles(ctx, "HEAD")
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if !reflect.DeepEqual(tracked, []string{"README.md", "b.txt", "pkg/a.go"}) {
		t.Fatalf("unexpected tracked files %v", tracked)
	}
	content, err := repo.ShowFile(ctx, "HEAD", "README.md")
	if err != nil || content != "hi\n" {
		t.Fatalf("unexpected README content %q (%v)", content, err)
	}
}

func TestGitError(t *testing.T) {
	cause := errors.New("exit status 128")
	err := gitError([]string{"show", "HEAD:x"}, cause, "fatal: path 'x' does not exist\n")
	if err.Error() != "git show HEAD:x: exit status 128: fatal: path 'x' does not exist" {
		t.Fatalf("unexpected message %q", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not wrapped")
	}
	if got := gitError([]string{"status"}, cause, "  ").Error(); got != "git status: exit status 128" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCommitLog_RequiresRange(t *testing.T) {
	if _, err := New(RepoConfig{}).CommitLog(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty range")
	}
}

func mustRun(t *testing.T, r *Repo, args ...string) {
	t.Helper()
	if _, err := r.Run(context.Background(), args...); err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
