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

// OpenAIClient speaks the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

// NewOpenAIClient builds a client from provider config.
func NewOpenAIClient(cfg config.ProviderConfig) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.TimeoutOrDefault(30 * time.Second),
		},
	}
}

// Name implements Client.
func (c *OpenAIClient) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Chat implements Client.
func (c *OpenAIClient) Chat(ctx context.Context, req Request) (Response, error) {
	if c.apiKey == "" {
		return Response{}, wrapErr(ErrNotConfigured, "openai API key missing")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	start := time.Now()
	logging.APIDebug("[openai] chat: model=%s system_len=%d user_len=%d",
		c.model, len(req.SystemPrompt), len(req.UserMessage))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	messages := []openAIMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: req.UserMessage})

	payload, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return Response{}, wrapErr(ErrTransport, "marshal request: %v", err)
	}

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

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return Response{}, wrapErr(ErrTransport, "build request: %v", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

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
			lastErr = wrapErr(ErrRateLimited, "429 from openai")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			logging.APIError("[openai] chat: status %d: %s", resp.StatusCode, truncate(raw, 200))
			return Response{}, wrapErr(ErrTransport, "status %d", resp.StatusCode)
		}

		var parsed openAIResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return Response{}, wrapErr(ErrInvalidResponse, "parse: %v", err)
		}
		if parsed.Error != nil {
			return Response{}, wrapErr(ErrInvalidResponse, "api error: %s", parsed.Error.Message)
		}
		if len(parsed.Choices) == 0 {
			return Response{}, wrapErr(ErrInvalidResponse, "no choices")
		}

		logging.API("[openai] chat: completed in %v tokens=%d/%d",
			time.Since(start), parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens)
		return Response{
			Text:      strings.TrimSpace(parsed.Choices[0].Message.Content),
			TokensIn:  parsed.Usage.PromptTokens,
			TokensOut: parsed.Usage.CompletionTokens,
			Provider:  c.Name(),
			Model:     c.model,
		}, nil
	}

	logging.APIError("[openai] chat: retries exhausted after %v: %v", time.Since(start), lastErr)
	return Response{}, lastErr
}
