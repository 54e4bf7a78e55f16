// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat sends single-turn prompts to an OpenAI-compatible chat
// completion endpoint.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/rag-engine/internal/httputil"
	"github.com/pdiddy/rag-engine/pkg/types"
)

// Defaults target DashScope's OpenAI-compatible mode.
const (
	DefaultModel   = "qwen3-coder-30b-a3b-instruct"
	DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// Completer answers a prompt. Tests supply a fake.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client is a Completer backed by go-openai.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewClient creates a chat client from cfg.
func NewClient(cfg types.ChatConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat API key not set (chat.api_key, DASHSCOPE_API_KEY, OPENAI_API_KEY or .secrets/)")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = httputil.NewRetryClient(cfg.Timeout, cfg.MaxRetries)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Complete sends prompt as a single user message and returns the first
// choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion API returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
