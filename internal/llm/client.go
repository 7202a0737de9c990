// Package llm wraps the chat model behind a single text-generation
// capability shared by the scorer, refiner, synthesizer and trend extractor.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/mindbloom-labs/research_agent/internal/config"
	"github.com/mindbloom-labs/research_agent/internal/logger"
)

// Generator produces one completion for a system + user prompt pair.
// An error always means the call failed; an empty-but-valid reply is
// returned as ("", nil).
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Client is the eino-backed Generator.
type Client struct {
	chatModel model.ChatModel
	limiter   *rate.Limiter
}

// NewClient initializes the chat model and its rate limiter.
func NewClient(ctx context.Context, llmCfg config.LLMConfig, conc config.ConcurrencyConfig) (*Client, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: llmCfg.BaseURL,
		APIKey:  llmCfg.APIKey,
		Model:   llmCfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("llm init failed: %w", err)
	}

	rpm := conc.RPM
	if rpm <= 0 {
		rpm = 60
	}
	burst := conc.QPS
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)

	return &Client{chatModel: chatModel, limiter: limiter}, nil
}

// Ensure Client implements Generator
var _ Generator = (*Client)(nil)

// Generate runs one completion, retrying 429-style failures with
// exponential backoff.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	maxRetries := 3
	baseDelay := 2 * time.Second

	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("limiter wait error: %w", err)
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: system},
			{Role: schema.User, Content: user},
		}

		resp, err := c.chatModel.Generate(ctx, messages)
		if err != nil {
			if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "too many requests") {
				lastErr = err
				if i < maxRetries {
					delay := baseDelay * time.Duration(1<<i)
					logger.Log.Warnf("llm rate limited, retrying in %v (%d/%d)...", delay, i+1, maxRetries)
					select {
					case <-ctx.Done():
						return "", ctx.Err()
					case <-time.After(delay):
						continue
					}
				}
			}
			return "", err
		}

		return strings.TrimSpace(resp.Content), nil
	}

	return "", fmt.Errorf("max retries exceeded: %v", lastErr)
}
