// Package llm wraps the OpenRouter chat-completions API behind a small
// completion façade with two specialized prompt builders.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"socialcast/internal/logger"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "anthropic/claude-3.5-sonnet"
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
)

// Client is a chat-completion client against an OpenAI-compatible API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Options controls a single completion request.
type Options struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
}

// NewClient creates a client for the given API key and model. An empty model
// selects DefaultModel.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	logger.Info("Initialized OpenRouter client", "model", model)
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// SetBaseURL overrides the API root, used by tests and alternate gateways.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat-completion request and returns the generated text.
// Transport and API errors propagate to the caller; there is no retry.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	messages := []chatMessage{}
	if opts.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: opts.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}

	request := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	logger.Debug("Generating completion", "model", c.model, "prompt_chars", len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	content := chatResp.Choices[0].Message.Content
	logger.Debug("Generated completion", "chars", len(content))
	return content, nil
}

// GenerateSocialPost asks the model for a social media post in the given
// style. The character budget is advisory to the model; callers enforce it
// by truncation.
func (c *Client) GenerateSocialPost(ctx context.Context, companyInfo, style string, maxLength int, temperature float64) (string, error) {
	systemPrompt := fmt.Sprintf(`You are a social media manager for TrustStack.
Create engaging, %s social media posts that highlight the company's value proposition.
Posts should be concise, engaging, and under %d characters.`, style, maxLength)

	prompt := fmt.Sprintf(`Based on the following company information, create a compelling social media post:

%s

Create a %s post that:
- Highlights a key aspect of TrustStack
- Is engaging and shareable
- Stays under %d characters
- Includes relevant hashtags if appropriate

Post:`, companyInfo, style, maxLength)

	return c.Complete(ctx, prompt, Options{
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		MaxTokens:    300,
	})
}

// GenerateArticleComment asks the model for a comment on an article from the
// company's perspective.
func (c *Client) GenerateArticleComment(ctx context.Context, articleTitle, articleSummary, companyContext string, maxLength int, temperature float64) (string, error) {
	systemPrompt := fmt.Sprintf(`You are an AI/ML expert representing TrustStack.
Create thoughtful, insightful comments on industry articles.
Comments should add value to the discussion and stay under %d characters.`, maxLength)

	prompt := fmt.Sprintf(`Article: %s

Summary: %s

Company Context: %s

Write a thoughtful comment that:
- Provides insightful perspective on the article
- Relates to TrustStack's expertise when relevant
- Adds value to the discussion
- Is professional and respectful
- Stays under %d characters

Comment:`, articleTitle, articleSummary, companyContext, maxLength)

	return c.Complete(ctx, prompt, Options{
		SystemPrompt: systemPrompt,
		Temperature:  temperature,
		MaxTokens:    200,
	})
}
