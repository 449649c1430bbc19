package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	vcsurl "github.com/gitsight/go-vcsurl"
	gh "github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/logging"
)

const perPage = 100

// Client reads pull request commits from GitHub.
type Client struct {
	gh  *gh.Client
	log logging.Logger
}

// NewHTTPClient returns an authenticated HTTP client when token is set.
func NewHTTPClient(token string) *http.Client {
	if token == "" {
		return &http.Client{Timeout: 30 * time.Second}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return tc
}

func NewClient(token string, log logging.Logger) *Client {
	return Wrap(gh.NewClient(NewHTTPClient(token)), log)
}

// Wrap uses an existing go-github client.
func Wrap(client *gh.Client, log logging.Logger) *Client {
	return &Client{gh: client, log: log.WithName("github")}
}

// Repository identifies a repository by owner and name.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string { return r.Owner + "/" + r.Name }

// ParseRepository accepts clone URLs, web URLs and the bare "owner/name" form.
func ParseRepository(raw string) (Repository, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Repository{}, errors.New("repository is required")
	}
	if parts := strings.Split(raw, "/"); len(parts) == 2 && !strings.Contains(raw, ":") {
		if parts[0] != "" && parts[1] != "" {
			return Repository{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}, nil
		}
	}
	info, err := vcsurl.Parse(raw)
	if err != nil {
		return Repository{}, fmt.Errorf("parse repository url %q: %w", raw, err)
	}
	if info.Username == "" || info.Name == "" {
		return Repository{}, fmt.Errorf("repository url %q has no owner or name", raw)
	}
	return Repository{Owner: info.Username, Name: strings.TrimSuffix(info.Name, ".git")}, nil
}

// PullRequestLog returns the messages of every commit in the pull request,
// oldest first, joined by commit.LogSeparator lines.
func (c *Client) PullRequestLog(ctx context.Context, repo Repository, number int) (string, error) {
	if number <= 0 {
		return "", errors.New("pull request number must be positive")
	}
	var messages []string
	opts := &gh.ListOptions{PerPage: perPage}
	for {
		commits, resp, err := c.gh.PullRequests.ListCommits(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return "", fmt.Errorf("list commits of %s#%d: %w", repo, number, err)
		}
		for _, rc := range commits {
			messages = append(messages, strings.TrimSpace(rc.GetCommit().GetMessage()))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	c.log.Debug("fetched pull request commits", "repo", repo.String(), "number", number, "commits", len(messages))
	return strings.Join(messages, "\n"+commit.LogSeparator+"\n"), nil
}

// PullRequestCommits fetches and parses the pull request's commits.
func (c *Client) PullRequestCommits(ctx context.Context, repo Repository, number int) ([]commit.Message, error) {
	log, err := c.PullRequestLog(ctx, repo, number)
	if err != nil {
		return nil, err
	}
	return commit.ParseLog(log), nil
}
