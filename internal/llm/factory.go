package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"frostadvisor/internal/config"
	"frostadvisor/internal/logging"
)

// NewClient builds a single provider client by name.
func NewClient(provider string, cfg *config.Config) (Client, error) {
	switch strings.ToLower(provider) {
	case "anthropic":
		return NewAnthropicClient(cfg.Providers.Anthropic), nil
	case "openai":
		return NewOpenAIClient(cfg.Providers.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// FallbackClient tries the primary provider and falls back to the
// secondary when the primary fails or is unconfigured. Rate-limit
// errors fall through too; the secondary has its own quota.
type FallbackClient struct {
	primary   Client
	secondary Client
}

// NewFallbackClient wires primary and fallback providers from the AI
// settings. secondary may be nil when no fallback is configured.
// "auto" (or an empty provider) means anthropic primary with openai
// fallback.
func NewFallbackClient(cfg *config.Config, settings config.AISettings) (*FallbackClient, error) {
	if settings.PrimaryProvider == "" || strings.EqualFold(settings.PrimaryProvider, "auto") {
		settings.PrimaryProvider = "anthropic"
		if settings.FallbackProvider == "" {
			settings.FallbackProvider = "openai"
		}
	}
	primary, err := NewClient(settings.PrimaryProvider, cfg)
	if err != nil {
		return nil, err
	}
	var secondary Client
	if settings.FallbackProvider != "" && settings.FallbackProvider != settings.PrimaryProvider {
		secondary, err = NewClient(settings.FallbackProvider, cfg)
		if err != nil {
			return nil, err
		}
	}
	return &FallbackClient{primary: primary, secondary: secondary}, nil
}

// Name implements Client.
func (f *FallbackClient) Name() string {
	if f.secondary != nil {
		return f.primary.Name() + "+" + f.secondary.Name()
	}
	return f.primary.Name()
}

// Chat implements Client.
func (f *FallbackClient) Chat(ctx context.Context, req Request) (Response, error) {
	resp, err := f.primary.Chat(ctx, req)
	if err == nil {
		return resp, nil
	}
	if f.secondary == nil || ctx.Err() != nil {
		return Response{}, err
	}

	logging.API("primary provider %s failed (%v), trying %s", f.primary.Name(), err, f.secondary.Name())
	resp2, err2 := f.secondary.Chat(ctx, req)
	if err2 == nil {
		return resp2, nil
	}
	return Response{}, errors.Join(err, err2)
}
