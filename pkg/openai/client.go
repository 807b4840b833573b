package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"console-service/prometheus"
)

// Client is a thin caller to the OpenAI chat completions API. Credentials
// are supplied per call because every tenant brings its own key.
type Client struct {
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
}

// Message represents a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ErrorResponse represents an error payload from the OpenAI API
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a new OpenAI client instance
func NewClient(baseURL, model string, maxTokens int) *Client {
	return &Client{
		BaseURL:    baseURL,
		Model:      model,
		MaxTokens:  maxTokens,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ChatCompletion sends the messages to the chat completions endpoint and
// returns the first choice's content.
func (c *Client) ChatCompletion(ctx context.Context, apiKey string, messages []Message) (string, error) {
	defer prometheus.TrackProviderCall("openai")(time.Now())

	payload, err := json.Marshal(chatCompletionRequest{
		Model:     c.Model,
		Messages:  messages,
		MaxTokens: c.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("openai api error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("openai api error (%d)", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	return completion.Choices[0].Message.Content, nil
}

// VerifyKey checks that the API key is accepted by the provider by listing
// available models.
func (c *Client) VerifyKey(ctx context.Context, apiKey string) error {
	defer prometheus.TrackProviderCall("openai")(time.Now())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("api key rejected by provider")
	default:
		return fmt.Errorf("unexpected provider response (%d)", resp.StatusCode)
	}
}
