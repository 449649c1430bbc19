package llm

import (
	"context"
	"errors"
)

// ErrDisabled is returned by services whose model backend is not configured.
var ErrDisabled = errors.New("AI backend disabled")

// Gateway sends prompts to a hosted language model and returns its raw text.
// A nil Gateway means the backend is disabled.
type Gateway interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, system, user string) (string, error)
}
