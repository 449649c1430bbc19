package api

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/roivaz/commitforge/internal/assist"
	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/media"
	"github.com/roivaz/commitforge/internal/rag"
)

// Degraded image payload returned instead of an error status.
const (
	imageErrorText   = "Image model unavailable (likely org not verified)."
	imageErrorHint   = "Verify org in OpenAI settings or disable images for the demo."
	imageFallbackURL = "https://picsum.photos/1024"
	speechMIME       = "audio/mpeg"
)

type chatRequest struct {
	Input string `json:"input"`
}

type summarizeRequest struct {
	Text     string `json:"text"`
	MaxWords int    `json:"maxWords"`
}

type translateRequest struct {
	Text string `json:"text"`
	To   string `json:"to"`
}

type imageRequest struct {
	Prompt string `json:"prompt"`
}

type imageDegraded struct {
	Error       string `json:"error"`
	Hint        string `json:"hint"`
	FallbackURL string `json:"fallbackUrl"`
}

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type ttsResponse struct {
	AudioB64 string `json:"audioB64"`
	MIME     string `json:"mime"`
}

type ingestRequest struct {
	Text      string `json:"text"`
	ChunkSize int    `json:"chunkSize"`
	Source    string `json:"source"`
}

type askRequest struct {
	Q string `json:"q"`
}

func isInputError(err error) bool {
	return errors.Is(err, errBadJSON) ||
		errors.Is(err, assist.ErrEmptyInput) ||
		errors.Is(err, media.ErrEmptyInput) ||
		errors.Is(err, media.ErrUnknownVoice) ||
		errors.Is(err, rag.ErrEmptyInput)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	answer, err := s.svc.Assist.Chat(r.Context(), req.Input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	summary, err := s.svc.Assist.Summarize(r.Context(), req.Text, req.MaxWords)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out, err := s.svc.Assist.Translate(r.Context(), req.Text, req.To)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"translation": out})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.svc.Media == nil {
		s.writeServiceError(w, r, llm.ErrDisabled)
		return
	}
	result, err := s.svc.Media.GenerateImage(r.Context(), req.Prompt)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"result": result})
	case errors.Is(err, llm.ErrDisabled) || isInputError(err):
		s.writeServiceError(w, r, err)
	default:
		s.log.Error(err, "image generation failed")
		writeJSON(w, http.StatusOK, imageDegraded{Error: imageErrorText, Hint: imageErrorHint, FallbackURL: imageFallbackURL})
	}
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.svc.Media == nil {
		s.writeServiceError(w, r, llm.ErrDisabled)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required (field 'file')")
		return
	}
	defer file.Close()

	text, err := s.svc.Media.Transcribe(r.Context(), header.Filename, file, r.FormValue("language"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"transcript": text})
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.svc.Media == nil {
		s.writeServiceError(w, r, llm.ErrDisabled)
		return
	}
	audio, err := s.svc.Media.Speak(r.Context(), req.Text, req.Voice)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ttsResponse{AudioB64: base64.StdEncoding.EncodeToString(audio), MIME: speechMIME})
}

func (s *Server) handleRAGIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.svc.RAG == nil {
		s.writeServiceError(w, r, llm.ErrDisabled)
		return
	}
	stored, err := s.svc.RAG.Ingest(r.Context(), req.Source, req.Text, req.ChunkSize)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stored": stored})
}

func (s *Server) handleRAGAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if s.svc.RAG == nil {
		s.writeServiceError(w, r, llm.ErrDisabled)
		return
	}
	answer, err := s.svc.RAG.Ask(r.Context(), req.Q)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
