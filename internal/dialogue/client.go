// Package dialogue turns text chunks into question/answer pairs via an
// external completion service, with a deterministic fallback when the
// service is unavailable.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// CompletionRequest is a single prompt sent to the completion service.
type CompletionRequest struct {
	Prompt      string
	Model       string
	Temperature float64
}

// CompletionClient is the external completion boundary. Implementations must
// be safe for concurrent use.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

const (
	defaultTimeout = 60 * time.Second

	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
)

// ErrEmptyResponse indicates the service returned no completion choices.
var ErrEmptyResponse = errors.New("completion service returned no choices")

// OpenAIClient implements CompletionClient against any OpenAI-compatible
// chat-completions endpoint (OpenAI itself or an OpenRouter-style gateway
// via baseURL).
type OpenAIClient struct {
	client  openai.Client
	timeout time.Duration
	retries int
}

// ClientConfig holds completion-client settings.
type ClientConfig struct {
	APIKey     string
	BaseURL    string // empty uses the provider default
	Timeout    time.Duration
	MaxRetries int
}

// NewOpenAIClient creates an OpenAIClient. An empty API key is allowed here;
// the call itself will fail with an auth error and the generator degrades to
// fallback content.
func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// The SDK retries internally too; keep our own capped loop as the single
	// retry authority.
	opts = append(opts, option.WithMaxRetries(0))

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	if retries == 0 {
		retries = maxRetries
	}

	return &OpenAIClient{
		client:  openai.NewClient(opts...),
		timeout: timeout,
		retries: retries,
	}
}

// Complete sends the prompt and returns the raw completion content.
// Retryable failures (429, 5xx) back off exponentially up to the retry cap;
// everything else returns immediately. The context cancels both the call
// and any backoff wait.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			backoff := backoffFor(attempt - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		content, err := c.callOnce(callCtx, req)
		cancel()

		if err == nil {
			return content, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("completion failed after %d retries: %w", c.retries, lastErr)
}

func (c *OpenAIClient) callOnce(ctx context.Context, req CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// backoffFor computes exponential backoff capped at maxBackoff.
func backoffFor(attempt int) time.Duration {
	backoff := float64(initialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}

// isRetryable reports whether the error is a transient service failure.
func isRetryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	// Timeouts and transport errors surface as plain errors; retry those,
	// but not context cancellation.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return false
	}
	return true
}
