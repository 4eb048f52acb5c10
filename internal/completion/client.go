// Package completion wraps the chat-completion endpoint behind a deadline-aware
// client. The call is not retried here: a completion is billed per attempt and
// two runs of the same conversation need not produce the same text, so retry
// policy belongs to whoever owns the request budget.
package completion

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/glosslab/gloss/internal/conversation"
)

var (
	// ErrUnavailable covers transport, auth and API failures.
	ErrUnavailable = errors.New("completion unavailable")
	// ErrTimeout reports that the caller's deadline elapsed before the model answered.
	ErrTimeout = errors.New("completion timeout")
)

// Usage is the token accounting reported by the model.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Result is one completed annotation.
type Result struct {
	Content string
	Usage   Usage
}

type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds a client for an OpenAI-compatible endpoint. baseURL may be
// empty to use the upstream default.
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends the conversation and returns the model's answer with its
// token usage. The deadline rides in on ctx.
func (c *Client) Complete(ctx context.Context, msgs []conversation.Message, temperature float32) (Result, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages:    toChatMessages(msgs),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return Result{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: empty choices", ErrUnavailable)
	}

	return Result{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func toChatMessages(msgs []conversation.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}
