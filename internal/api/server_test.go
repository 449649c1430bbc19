package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"github.com/roivaz/commitforge/internal/commit"
	"github.com/roivaz/commitforge/internal/github"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/metrics"
)

type stubGateway struct {
	reply string
	err   error
	calls int
}

func (g *stubGateway) Complete(ctx context.Context, p string) (string, error) {
	return g.CompleteWithSystem(ctx, "", p)
}

func (g *stubGateway) CompleteWithSystem(context.Context, string, string) (string, error) {
	g.calls++
	return g.reply, g.err
}

type stubMedia struct {
	err      error
	filename string
	audio    string
}

func (m *stubMedia) GenerateImage(context.Context, string) (string, error) {
	return "b64data", m.err
}

func (m *stubMedia) Transcribe(_ context.Context, filename string, audio io.Reader, _ string) (string, error) {
	m.filename = filename
	b, _ := io.ReadAll(audio)
	m.audio = string(b)
	return "transcribed", m.err
}

func (m *stubMedia) Speak(context.Context, string, string) ([]byte, error) {
	return []byte("mp3"), m.err
}

type stubGitHub struct {
	repo   github.Repository
	number int
}

func (g *stubGitHub) PullRequestCommits(_ context.Context, repo github.Repository, number int) ([]commit.Message, error) {
	g.repo, g.number = repo, number
	return []commit.Message{{Type: "feat", Subject: "add login", Issues: []string{}}}, nil
}

func newTestServer(svc Services) *Server {
	return NewServer(svc, Options{}, logging.New(logr.Discard()))
}

func do(t *testing.T, s *Server, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndRequestID(t *testing.T) {
	rec := do(t, newTestServer(Services{}), http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestGenerateCommit_FallbackWithoutBackend(t *testing.T) {
	body := `{"repo":"r","files":["api/handler.go"],"diff":"+x"}`
	rec := do(t, newTestServer(Services{}), http.MethodPost, "/generate-commit", "application/json", strings.NewReader(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Structured.Scope != "api" || resp.Message != "chore(api): update api/handler.go\n\nChanges: - api/handler.go" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGenerateCommit_FromModel(t *testing.T) {
	gw := &stubGateway{reply: `Sure: {"type":"feat","scope":"ui","subject":"add button","issues":["#9"]}`}
	rec := do(t, newTestServer(Services{Gateway: gw}), http.MethodPost, "/generate-commit", "application/json", strings.NewReader(`{"diff":"+b"}`))
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "feat(ui): add button\n\n#9" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestGenerateCommitText_SplitsFiles(t *testing.T) {
	form := url.Values{"diff": {"+x"}, "files": {"a.go, b.go\nc.go"}}
	rec := do(t, newTestServer(Services{}), http.MethodPost, "/generate-commit-text", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "chore: update 3 files") {
		t.Fatalf("unexpected text %q", rec.Body.String())
	}
}

func TestDebugRawAndPing_Errors(t *testing.T) {
	gw := &stubGateway{err: errors.New("quota exceeded")}
	s := newTestServer(Services{Gateway: gw})

	form := url.Values{"diff": {"+x"}}
	rec := do(t, s, http.MethodPost, "/debug-generate-raw", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "ERROR calling model: ") {
		t.Fatalf("unexpected debug response %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/ping-openai", "", nil)
	if rec.Body.String() != "PING ERROR: quota exceeded" {
		t.Fatalf("unexpected ping response %q", rec.Body.String())
	}
}

func TestFormatAndParseLog(t *testing.T) {
	s := newTestServer(Services{})
	rec := do(t, s, http.MethodPost, "/api/commit/format", "application/json",
		strings.NewReader(`{"type":"fix","subject":"handle nil","breakingChange":"drops v1"}`))
	if rec.Body.String() != "fix!: handle nil\n\nBREAKING CHANGE: drops v1" {
		t.Fatalf("unexpected format %q", rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/commit/parse-log", "text/plain",
		strings.NewReader("feat(api): add X\n----8<----\nfix: y\n"))
	var commits []commit.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &commits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(commits) != 2 || commits[0].Scope != "api" || commits[1].Type != "fix" {
		t.Fatalf("unexpected commits %+v", commits)
	}

	rec = do(t, s, http.MethodPost, "/api/commit/parse-log", "text/plain", strings.NewReader(""))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", rec.Body.String())
	}
}

func TestPRDescription(t *testing.T) {
	s := newTestServer(Services{})
	rec := do(t, s, http.MethodPost, "/api/pr-description", "application/json", strings.NewReader(`{}`))
	if rec.Body.String() != "# Update\n\n_No commits found._\n" {
		t.Fatalf("unexpected empty description %q", rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/pr-description", "application/json",
		strings.NewReader(`{"log":"fix: handle timeout\n"}`))
	if !strings.HasPrefix(rec.Body.String(), "# handle timeout\n") {
		t.Fatalf("unexpected description %q", rec.Body.String())
	}
}

func TestPRDescriptionGitHub(t *testing.T) {
	if rec := do(t, newTestServer(Services{}), http.MethodPost, "/api/pr-description/github", "application/json", strings.NewReader(`{}`)); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without client, got %d", rec.Code)
	}

	gh := &stubGitHub{}
	s := newTestServer(Services{GitHub: gh})
	rec := do(t, s, http.MethodPost, "/api/pr-description/github", "application/json",
		strings.NewReader(`{"repoUrl":"https://github.com/acme/widgets.git","number":42}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gh.repo.Owner != "acme" || gh.repo.Name != "widgets" || gh.number != 42 {
		t.Fatalf("unexpected lookup %+v #%d", gh.repo, gh.number)
	}
	if !strings.HasPrefix(rec.Body.String(), "# add login\n") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/pr-description/github", "application/json", strings.NewReader(`{"repoUrl":"acme/widgets"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing number, got %d", rec.Code)
	}
}

func TestAssistEndpoints(t *testing.T) {
	disabled := newTestServer(Services{})
	rec := do(t, disabled, http.MethodPost, "/api/chat", "application/json", strings.NewReader(`{"input":"hi"}`))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "AI backend disabled") {
		t.Fatalf("unexpected disabled response %d %q", rec.Code, rec.Body.String())
	}

	s := newTestServer(Services{Gateway: &stubGateway{reply: " hola "}})
	rec = do(t, s, http.MethodPost, "/api/translate", "application/json", strings.NewReader(`{"text":"hello","to":"Spanish"}`))
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["translation"] != "hola" {
		t.Fatalf("unexpected translation %v", out)
	}

	rec = do(t, s, http.MethodPost, "/api/summarize", "application/json", strings.NewReader(`{"text":" "}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodPost, "/api/chat", "application/json", strings.NewReader(`{not json`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestImage_Degraded(t *testing.T) {
	s := newTestServer(Services{Media: &stubMedia{err: errors.New("403 org not verified")}})
	rec := do(t, s, http.MethodPost, "/api/image", "application/json", strings.NewReader(`{"prompt":"cat"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out imageDegraded
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Error != imageErrorText || out.FallbackURL != imageFallbackURL || out.Hint != imageErrorHint {
		t.Fatalf("unexpected degraded payload %+v", out)
	}

	rec = do(t, newTestServer(Services{Media: &stubMedia{}}), http.MethodPost, "/api/image", "application/json", strings.NewReader(`{"prompt":"cat"}`))
	if !strings.Contains(rec.Body.String(), `"result":"b64data"`) {
		t.Fatalf("unexpected image response %q", rec.Body.String())
	}
}

func TestAudio(t *testing.T) {
	m := &stubMedia{}
	s := newTestServer(Services{Media: m})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "note.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = fw.Write([]byte("RIFF"))
	_ = mw.WriteField("language", "en")
	_ = mw.Close()

	rec := do(t, s, http.MethodPost, "/api/audio/transcribe", mw.FormDataContentType(), &buf)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"transcript":"transcribed"`) {
		t.Fatalf("unexpected transcribe response %d %q", rec.Code, rec.Body.String())
	}
	if m.filename != "note.webm" || m.audio != "RIFF" {
		t.Fatalf("upload not forwarded: %q %q", m.filename, m.audio)
	}

	rec = do(t, s, http.MethodPost, "/api/audio/tts", "application/json", strings.NewReader(`{"text":"hi"}`))
	var tts ttsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tts.AudioB64 != "bXAz" || tts.MIME != "audio/mpeg" {
		t.Fatalf("unexpected tts response %+v", tts)
	}

	rec = do(t, newTestServer(Services{}), http.MethodPost, "/api/audio/tts", "application/json", strings.NewReader(`{"text":"hi"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without media, got %d", rec.Code)
	}
}

type stubRAG struct{ source string }

func (r *stubRAG) Ingest(_ context.Context, source, _ string, _ int) (int, error) {
	r.source = source
	return 3, nil
}

func (r *stubRAG) Ask(context.Context, string) (string, error) { return "Tuesday", nil }

func TestRAGEndpoints(t *testing.T) {
	rag := &stubRAG{}
	s := newTestServer(Services{RAG: rag})
	rec := do(t, s, http.MethodPost, "/api/rag/ingest", "application/json", strings.NewReader(`{"text":"doc","source":"wiki"}`))
	if strings.TrimSpace(rec.Body.String()) != `{"stored":3}` || rag.source != "wiki" {
		t.Fatalf("unexpected ingest response %q", rec.Body.String())
	}
	rec = do(t, s, http.MethodPost, "/api/rag/ask", "application/json", strings.NewReader(`{"q":"when?"}`))
	if !strings.Contains(rec.Body.String(), `"answer":"Tuesday"`) {
		t.Fatalf("unexpected ask response %q", rec.Body.String())
	}

	rec = do(t, newTestServer(Services{}), http.MethodPost, "/api/rag/ask", "application/json", strings.NewReader(`{"q":"when?"}`))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without rag, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	s := newTestServer(Services{Metrics: m, Gateway: &stubGateway{reply: "ok"}})
	do(t, s, http.MethodPost, "/api/chat", "application/json", strings.NewReader(`{"input":"hi"}`))

	rec := do(t, s, http.MethodGet, "/metrics", "", nil)
	if !strings.Contains(rec.Body.String(), `ai_requests_total{type="chat"} 1`) {
		t.Fatalf("expected chat request counter in metrics output")
	}
}
