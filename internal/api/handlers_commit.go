package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/commitgen"
	"github.com/roivaz/commitforge/internal/github"
)

type generateResponse struct {
	Message    string         `json:"message"`
	Structured commit.Message `json:"structured"`
}

type prDescriptionRequest struct {
	Commits []commit.Message `json:"commits"`
	Log     string           `json:"log"`
	Polish  bool             `json:"polish"`
}

type githubPRRequest struct {
	RepoURL string `json:"repoUrl"`
	Number  int    `json:"number"`
	Polish  bool   `json:"polish"`
}

type pinger interface {
	Ping(ctx context.Context) (string, error)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if s.svc.Gateway == nil {
		writeText(w, http.StatusOK, "PING ERROR: AI backend disabled")
		return
	}
	var (
		out string
		err error
	)
	if p, ok := s.svc.Gateway.(pinger); ok {
		out, err = p.Ping(r.Context())
	} else {
		out, err = s.svc.Gateway.Complete(r.Context(), "Say OK")
	}
	if err != nil {
		s.log.Error(err, "ping failed")
		writeText(w, http.StatusOK, "PING ERROR: "+err.Error())
		return
	}
	writeText(w, http.StatusOK, out)
}

// formRequest reads the form fields shared by the text commit endpoints.
// Blank repo and author are defaulted by the prompt builder.
func formRequest(r *http.Request) (commitgen.Request, error) {
	if err := r.ParseForm(); err != nil {
		return commitgen.Request{}, fmt.Errorf("invalid form: %w", err)
	}
	return commitgen.Request{
		Repo:   r.PostForm.Get("repo"),
		Author: r.PostForm.Get("author"),
		Files:  splitFiles(r.PostForm.Get("files")),
		Diff:   r.PostForm.Get("diff"),
	}, nil
}

func (s *Server) handleDebugRaw(w http.ResponseWriter, r *http.Request) {
	req, err := formRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, err := s.svc.Commits.Raw(r.Context(), req)
	if err != nil {
		writeText(w, http.StatusOK, "ERROR calling model: "+err.Error())
		return
	}
	writeText(w, http.StatusOK, raw)
}

func (s *Server) handleGenerateCommit(w http.ResponseWriter, r *http.Request) {
	var req commitgen.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg := s.svc.Commits.Generate(r.Context(), req)
	writeJSON(w, http.StatusOK, generateResponse{Message: commit.ToConventional(msg), Structured: msg})
}

func (s *Server) handleGenerateCommitText(w http.ResponseWriter, r *http.Request) {
	req, err := formRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg := s.svc.Commits.Generate(r.Context(), req)
	writeText(w, http.StatusOK, commit.ToConventional(msg))
}

func (s *Server) handleFormatCommit(w http.ResponseWriter, r *http.Request) {
	var msg commit.Message
	if err := decodeJSON(r, &msg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeText(w, http.StatusOK, commit.ToConventional(msg))
}

func (s *Server) handleParseLog(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}
	writeJSON(w, http.StatusOK, commit.ParseLog(string(body)))
}

func (s *Server) handlePRDescription(w http.ResponseWriter, r *http.Request) {
	var req prDescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	commits := req.Commits
	if len(commits) == 0 && strings.TrimSpace(req.Log) != "" {
		commits = commit.ParseLog(req.Log)
	}
	writeMarkdown(w, s.svc.PRs.Build(r.Context(), commits, req.Polish))
}

func (s *Server) handlePRDescriptionGitHub(w http.ResponseWriter, r *http.Request) {
	if s.svc.GitHub == nil {
		writeError(w, http.StatusServiceUnavailable, "GitHub client not configured")
		return
	}
	var req githubPRRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Number <= 0 {
		writeError(w, http.StatusBadRequest, "number must be positive")
		return
	}
	repo, err := github.ParseRepository(req.RepoURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	commits, err := s.svc.GitHub.PullRequestCommits(r.Context(), repo, req.Number)
	if err != nil {
		s.log.Error(err, "fetch pull request commits failed", "repo", repo.String(), "number", req.Number)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeMarkdown(w, s.svc.PRs.Build(r.Context(), commits, req.Polish))
}

func writeMarkdown(w http.ResponseWriter, md string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, md)
}
