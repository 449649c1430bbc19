package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/roivaz/commitforge/internal/llm"
	"github.com/roivaz/commitforge/internal/logging"
	"github.com/roivaz/commitforge/internal/metrics"
)

const DefaultVoice = "alloy"

var (
	ErrEmptyInput   = errors.New("input is empty")
	ErrUnknownVoice = errors.New("unknown voice")
	ErrNoImage      = errors.New("image response had no data")
)

var voices = map[string]openai.SpeechVoice{
	"alloy":   openai.VoiceAlloy,
	"ash":     openai.VoiceAsh,
	"ballad":  openai.VoiceBallad,
	"coral":   openai.VoiceCoral,
	"echo":    openai.VoiceEcho,
	"fable":   openai.VoiceFable,
	"onyx":    openai.VoiceOnyx,
	"nova":    openai.VoiceNova,
	"sage":    openai.VoiceSage,
	"shimmer": openai.VoiceShimmer,
	"verse":   openai.VoiceVerse,
}

// api is the subset of *openai.Client used here.
type api interface {
	CreateImage(ctx context.Context, request openai.ImageRequest) (openai.ImageResponse, error)
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

type Config struct {
	APIKey             string
	BaseURL            string
	ImageModel         string
	TranscriptionModel string
	SpeechModel        string
	CallTimeout        time.Duration
}

// Service wraps the OpenAI image and audio endpoints. A nil *Service is
// valid and reports every call as disabled.
type Service struct {
	client  api
	cfg     Config
	metrics *metrics.Metrics
	log     logging.Logger
}

// New returns nil when no API key is configured.
func New(cfg Config, m *metrics.Metrics, log logging.Logger) *Service {
	if cfg.APIKey == "" {
		log.Info("media service disabled", "reason", "missing openai api key")
		return nil
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return newService(openai.NewClientWithConfig(oc), cfg, m, log)
}

func newService(client api, cfg Config, m *metrics.Metrics, log logging.Logger) *Service {
	if cfg.ImageModel == "" {
		cfg.ImageModel = openai.CreateImageModelDallE3
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = openai.Whisper1
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = string(openai.TTSModel1)
	}
	return &Service{client: client, cfg: cfg, metrics: m, log: log.WithName("media")}
}

// GenerateImage returns base64 image data when the API provides it, the
// hosted URL otherwise.
func (s *Service) GenerateImage(ctx context.Context, prompt string) (result string, err error) {
	if s == nil {
		return "", llm.ErrDisabled
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyInput
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.TypeImage, start, err) }()
	s.metrics.ObservePrompt(metrics.TypeImage, len(prompt), 0)

	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Prompt: prompt,
		Model:  s.cfg.ImageModel,
		N:      1,
		Size:   openai.CreateImageSize1024x1024,
	})
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", ErrNoImage
	}
	first := resp.Data[0]
	if first.B64JSON != "" {
		return first.B64JSON, nil
	}
	return first.URL, nil
}

// Transcribe converts uploaded audio to text. language is an optional
// ISO-639-1 hint.
func (s *Service) Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (text string, err error) {
	if s == nil {
		return "", llm.ErrDisabled
	}
	if filename == "" {
		filename = "audio.webm"
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.TypeSTT, start, err) }()

	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.cfg.TranscriptionModel,
		FilePath: filename,
		Reader:   audio,
		Language: strings.TrimSpace(language),
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Speak synthesizes text as MP3. voice is case-insensitive and defaults to
// DefaultVoice.
func (s *Service) Speak(ctx context.Context, text, voice string) (audio []byte, err error) {
	if s == nil {
		return nil, llm.ErrDisabled
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	v, err := ResolveVoice(voice)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	defer func() { s.metrics.Observe(metrics.TypeTTS, start, err) }()
	s.metrics.ObservePrompt(metrics.TypeTTS, len(text), 0)

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.cfg.SpeechModel),
		Input:          text,
		Voice:          v,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w", err)
	}
	defer resp.Close()
	audio, err = io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech: %w", err)
	}
	return audio, nil
}

// ResolveVoice maps a case-insensitive voice name to the API value.
func ResolveVoice(name string) (openai.SpeechVoice, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultVoice
	}
	v, ok := voices[name]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownVoice, name)
	}
	return v, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.CallTimeout)
}
