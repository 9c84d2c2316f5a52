// Package llm wraps the OpenAI-compatible chat-completion API used for
// bookmark summaries, short titles, and tag extraction.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/creativeos/creos/config"
	"github.com/creativeos/creos/models"
)

// Client is a lightweight chat-completion client.
// It uses net/http directly — no third-party SDK needed.
type Client struct {
	httpClient *http.Client
	cfg        config.LLMConfig
}

// NewClient creates a Client. Pass nil to use a default http.Client with the
// configured timeout.
func NewClient(httpClient *http.Client, cfg config.LLMConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{httpClient: httpClient, cfg: cfg}
}

// chatRequest is the chat completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the minimal chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse captures an API error from the provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// complete sends one chat completion and returns the first choice's content.
// Rate-limit and server errors are retried with exponential backoff; auth
// and other client errors fail immediately.
func (c *Client) complete(ctx context.Context, messages []chatMessage, maxTokens int, temperature float64) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", models.NewAppError(models.ErrCodeLLMFailure, "encode request", err)
	}

	var content string
	operation := func() error {
		result, opErr := c.doRequest(ctx, payload)
		if opErr != nil {
			return opErr
		}
		content = result
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	notify := func(err error, next time.Duration) {
		slog.Warn("llm request failed, retrying",
			"error", err, "next_attempt_in", next.Round(time.Millisecond).String())
	}

	retryable := backoff.WithMaxRetries(bo, uint64(c.cfg.MaxRetries))
	if err := backoff.RetryNotify(operation, backoff.WithContext(retryable, ctx), notify); err != nil {
		return "", err
	}
	return content, nil
}

// doRequest performs a single completion round trip. Errors wrapped in
// backoff.Permanent stop the retry loop.
func (c *Client) doRequest(ctx context.Context, payload []byte) (string, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", backoff.Permanent(models.NewAppError(models.ErrCodeLLMFailure, "build request", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", models.NewAppError(models.ErrCodeLLMFailure, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", models.NewAppError(models.ErrCodeLLMFailure, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", models.NewAppError(models.ErrCodeLLMRateLimited, "provider rate limited", apiError(body))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", backoff.Permanent(models.NewAppError(models.ErrCodeLLMAuthFailure, "provider rejected credentials", apiError(body)))
	case resp.StatusCode >= 500:
		return "", models.NewAppError(models.ErrCodeLLMFailure, fmt.Sprintf("provider error %d", resp.StatusCode), apiError(body))
	case resp.StatusCode >= 400:
		return "", backoff.Permanent(models.NewAppError(models.ErrCodeLLMFailure, fmt.Sprintf("provider error %d", resp.StatusCode), apiError(body)))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return "", backoff.Permanent(models.NewAppError(models.ErrCodeLLMFailure, "decode response", err))
	}
	if len(chat.Choices) == 0 {
		return "", backoff.Permanent(models.NewAppError(models.ErrCodeLLMFailure, "empty choices", nil))
	}
	return chat.Choices[0].Message.Content, nil
}

// apiError extracts the provider's error message from a failed response body.
func apiError(body []byte) error {
	var e chatErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return fmt.Errorf("%s (%s)", e.Error.Message, e.Error.Type)
	}
	return fmt.Errorf("%s", strings.TrimSpace(string(body)))
}
