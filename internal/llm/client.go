// Package llm provides the provider clients for the AI answer path.
// Providers speak their native HTTP APIs directly; the advisor only
// sees the Client interface and the typed error kinds.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request is one completion request. SystemPrompt carries the verified
// game facts; UserMessage carries the question plus profile context.
type Request struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
}

// Response is a completed answer with token accounting for the
// conversation log.
type Response struct {
	Text      string
	TokensIn  int
	TokensOut int
	Provider  string
	Model     string
}

// Client is a single LLM provider.
type Client interface {
	// Chat sends one request and returns the completion. Implementations
	// honor ctx cancellation and retry transient failures internally.
	Chat(ctx context.Context, req Request) (Response, error)
	// Name returns the provider identifier ("anthropic", "openai").
	Name() string
}

// Error kinds. The advisor maps these to user-safe messages; raw
// provider errors never reach the player.
var (
	// ErrNotConfigured means the provider has no API key.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrRateLimited means the provider returned 429 through all retries.
	ErrRateLimited = errors.New("provider rate limited")
	// ErrTransport covers network failures and non-2xx statuses.
	ErrTransport = errors.New("provider request failed")
	// ErrInvalidResponse means the provider answered with an unusable body.
	ErrInvalidResponse = errors.New("invalid provider response")
)

const (
	defaultMaxTokens = 1024
	maxRetries       = 3
)

func wrapErr(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
