package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/roivaz/commitforge/internal/commit"
)

type RepoConfig struct {
	Path string // default: current directory
}

// Repo runs git commands against a local working tree.
type Repo struct {
	cfg    RepoConfig
	runner Runner
}

func New(cfg RepoConfig) *Repo {
	if cfg.Path == "" {
		cfg.Path = "."
	}
	return &Repo{cfg: cfg, runner: Runner{Timeout: 2 * time.Minute}}
}

// Runner executes git with a hard per-command timeout.
type Runner struct {
	Timeout time.Duration
	// Stdin is fed to the command when set.
	Stdin string
}

func (r Runner) Git(ctx context.Context, dir string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	if r.Stdin != "" {
		c.Stdin = strings.NewReader(r.Stdin)
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	switch {
	case err == nil:
		return stdout.String(), nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded) && r.Timeout > 0:
		err = fmt.Errorf("command timed out after %s", r.Timeout)
	case ctx.Err() != nil:
		err = ctx.Err()
	}
	return "", gitError(args, err, stderr.String())
}

func gitError(args []string, cause error, stderr string) error {
	cmd := "git " + strings.Join(args, " ")
	if stderr = strings.TrimSpace(stderr); stderr != "" {
		return fmt.Errorf("%s: %w: %s", cmd, cause, stderr)
	}
	return fmt.Errorf("%s: %w", cmd, cause)
}

// Run executes an arbitrary git subcommand in the repo path.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	return r.runner.Git(ctx, r.cfg.Path, args...)
}

// Toplevel returns the absolute root of the working tree.
func (r *Repo) Toplevel(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Repo) HeadSHA(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// UserName returns git's configured user.name, or "" when unset.
func (r *Repo) UserName(ctx context.Context) string {
	out, err := r.Run(ctx, "config", "--get", "user.name")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// StagedFiles lists repo-relative paths in the index that differ from HEAD.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.Run(ctx, "diff", "--cached", "--name-only", "--no-color")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// StagedDiff returns the unified diff of the index against HEAD.
func (r *Repo) StagedDiff(ctx context.Context) (string, error) {
	return r.Run(ctx, "diff", "--cached", "--no-color", "--no-ext-diff", "--find-renames")
}

// CommitLog returns the full messages of the commits in rangeSpec (for
// example "main..HEAD"), oldest first, separated by commit.LogSeparator
// lines so the output can be fed to commit.ParseLog.
func (r *Repo) CommitLog(ctx context.Context, rangeSpec string) (string, error) {
	if strings.TrimSpace(rangeSpec) == "" {
		return "", errors.New("revision range is required")
	}
	format := "--format=%B%n" + commit.LogSeparator
	return r.Run(ctx, "log", "--reverse", "--no-color", format, rangeSpec)
}

// ListFiles returns repo-relative paths tracked at ref.
func (r *Repo) ListFiles(ctx context.Context, ref string) ([]string, error) {
	out, err := r.Run(ctx, "ls-tree", "-r", "--name-only", ref)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// ShowFile returns the content of path at ref.
func (r *Repo) ShowFile(ctx context.Context, ref, path string) (string, error) {
	return r.Run(ctx, "show", ref+":"+path)
}

// Commit records the staged changes with message.
func (r *Repo) Commit(ctx context.Context, message string) (string, error) {
	runner := r.runner
	runner.Stdin = message
	return runner.Git(ctx, r.cfg.Path, "commit", "-F", "-")
}

func splitLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
