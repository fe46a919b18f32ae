package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"frostadvisor/internal/config"
	"frostadvisor/internal/logging"
)

// AnthropicClient speaks the Anthropic messages API.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

// NewAnthropicClient builds a client from provider config.
func NewAnthropicClient(cfg config.ProviderConfig) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.TimeoutOrDefault(30 * time.Second),
		},
	}
}

// Name implements Client.
func (c *AnthropicClient) Name() string { return "anthropic" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat implements Client.
func (c *AnthropicClient) Chat(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, wrapErr(ErrNotConfigured, "anthropic API key missing")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	logging.APIDebug("[anthropic] chat: model=%s system_len=%d user_len=%d",
		c.model, len(req.SystemPrompt), len(req.UserMessage))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	body := anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserMessage}},
		Temperature: 0.1,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, wrapErr(ErrTransport, "marshal request: %v", err)
	}

	// Space consecutive requests out; the advisor can fan in from
	// several workers at once.
	c.mu.Lock()
	if elapsed := time.Since(c.lastRequest); elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Response{}, wrapErr(ErrTransport, "canceled: %v", ctx.Err())
			case <-time.After(time.Duration(1<<uint(attempt-1)) * time.Second):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
		if err != nil {
			return Response{}, wrapErr(ErrTransport, "build request: %v", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = wrapErr(ErrTransport, "request: %v", err)
			continue
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = wrapErr(ErrTransport, "read response: %v", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = wrapErr(ErrRateLimited, "429 from anthropic")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			logging.APIError("[anthropic] chat: status %d: %s", resp.StatusCode, truncate(raw, 200))
			return Response{}, wrapErr(ErrTransport, "status %d", resp.StatusCode)
		}

		var parsed anthropicResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return Response{}, wrapErr(ErrInvalidResponse, "parse: %v", err)
		}
		if parsed.Error != nil {
			return Response{}, wrapErr(ErrInvalidResponse, "api error: %s", parsed.Error.Message)
		}
		if len(parsed.Content) == 0 {
			return Response{}, wrapErr(ErrInvalidResponse, "empty content")
		}

		var text strings.Builder
		for _, block := range parsed.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		logging.API("[anthropic] chat: completed in %v tokens=%d/%d",
			time.Since(start), parsed.Usage.InputTokens, parsed.Usage.OutputTokens)
		return Response{
			Text:      strings.TrimSpace(text.String()),
			TokensIn:  parsed.Usage.InputTokens,
			TokensOut: parsed.Usage.OutputTokens,
			Provider:  c.Name(),
			Model:     c.model,
		}, nil
	}

	logging.APIError("[anthropic] chat: retries exhausted after %v: %v", time.Since(start), lastErr)
	return Response{}, lastErr
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
