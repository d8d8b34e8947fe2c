package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const systemInstruction = "You are an expert examination question creator. " +
	"Generate high-quality multiple-choice questions following the exact format requested."

// Client wraps an OpenAI-compatible chat-completion API. One request per
// generation, no retries; every transport, auth, or quota failure surfaces
// as a single wrapped error.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
}

// New creates a new LLM client. apiKey may be empty when every request is
// expected to carry its own credential.
func New(baseURL, apiKey, modelName string, temperature float32, maxTokens int) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// HasKey reports whether a server-level API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

func (c *Client) api(apiKey string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	return openai.NewClientWithConfig(config)
}

// Generate sends the prompt with the fixed system instruction and returns
// the raw completion text. An empty apiKey falls back to the configured
// server-level key.
func (c *Client) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	key := apiKey
	if key == "" {
		key = c.apiKey
	}
	if key == "" {
		return "", fmt.Errorf("no API key available")
	}

	resp, err := c.api(key).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping verifies the endpoint is reachable with the server-level key.
func (c *Client) Ping(ctx context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("no server-level API key configured")
	}
	if _, err := c.api(c.apiKey).ListModels(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	return nil
}
