package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/roivaz/commitforge/internal/logging"
)

const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

type Config struct {
	Provider     string
	Model        string
	BaseURL      string
	OpenAIKey    string
	AnthropicKey string
	Temperature  float64
	CallTimeout  time.Duration
}

// Client implements Gateway on top of a langchaingo model.
type Client struct {
	model llms.Model
	name  string
	temp  float64
	to    time.Duration
	log   logging.Logger
}

// New builds the configured gateway. It returns a nil Gateway and no error
// when the provider is "none" or a hosted provider has no credentials, so
// callers can treat the backend as disabled.
func New(cfg Config, log logging.Logger) (Gateway, error) {
	log = log.WithName("llm")
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var (
		model llms.Model
		err   error
	)
	switch provider {
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			log.Info("model gateway disabled", "reason", "missing openai api key")
			return nil, nil
		}
		opts := []openai.Option{openai.WithToken(cfg.OpenAIKey), openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model), ollama.WithKeepAlive("5m")}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
	case ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			log.Info("model gateway disabled", "reason", "missing anthropic api key")
			return nil, nil
		}
		model, err = anthropic.New(anthropic.WithToken(cfg.AnthropicKey), anthropic.WithModel(cfg.Model))
	case ProviderNone, "":
		log.Info("model gateway disabled", "reason", "no provider configured")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", provider, err)
	}

	log.Info("model gateway ready", "provider", provider, "model", cfg.Model)
	return NewClient(model, cfg, log), nil
}

// NewClient wraps an existing langchaingo model.
func NewClient(model llms.Model, cfg Config, log logging.Logger) *Client {
	return &Client{model: model, name: cfg.Model, temp: cfg.Temperature, to: cfg.CallTimeout, log: log}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
}

func (c *Client) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	})
}

// Ping sends a trivial prompt to confirm the backend answers.
func (c *Client) Ping(ctx context.Context) (string, error) {
	return c.Complete(ctx, "Say OK")
}

func (c *Client) generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, messages, llms.WithTemperature(c.temp))
	if err != nil {
		err = c.annotateError(err)
		c.log.Debug("model call failed", "model", c.name, "elapsed", time.Since(start).String(), "error", err.Error())
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty model response")
	}
	c.log.Debug("model call finished", "model", c.name, "elapsed", time.Since(start).String())
	return resp.Choices[0].Content, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.to <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.to)
}

func (c *Client) annotateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("llm call timed out after %s: %w", c.to, err)
	}
	return err
}
