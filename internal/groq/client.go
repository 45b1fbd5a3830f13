package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"quizdrop/internal/prompt"
)

// DefaultAPIURL is the Groq chat-completions endpoint.
const DefaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"

var (
	// ErrNotConfigured is returned when no API credential is available.
	// The caller must not attempt a generation call without one.
	ErrNotConfigured = errors.New("GROQ_API_KEY environment variable not set")

	// ErrEmptyResponse is returned when the API reply parses but carries no
	// completion text.
	ErrEmptyResponse = errors.New("no content received from Groq API")
)

// APIError carries a non-2xx reply from the completion endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Groq API request failed: %d - %s", e.StatusCode, e.Body)
}

// Client wraps the Groq chat-completions API.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewClient builds a client from process configuration. A missing credential
// is not fatal here; Complete reports ErrNotConfigured per call so the
// orchestrator can surface a distinct configuration failure.
func NewClient() *Client {
	apiURL := os.Getenv("GROQ_API_URL")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	return &Client{
		apiKey:     os.Getenv("GROQ_API_KEY"),
		apiURL:     apiURL,
		model:      prompt.ModelName,
		httpClient: &http.Client{},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model            string    `json:"model"`
	Messages         []message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p"`
	Stream           bool      `json:"stream"`
	PresencePenalty  float64   `json:"presence_penalty"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues a single chat-completion call and returns the raw
// completion text. One attempt only; transient upstream failures surface
// directly to the caller rather than being retried.
func (c *Client) Complete(ctx context.Context, p prompt.Prompt) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		Temperature:      p.Sampling.Temperature,
		MaxTokens:        p.Sampling.MaxTokens,
		TopP:             p.Sampling.TopP,
		Stream:           false,
		PresencePenalty:  p.Sampling.PresencePenalty,
		FrequencyPenalty: p.Sampling.FrequencyPenalty,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Groq API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Groq response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode Groq response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	return parsed.Choices[0].Message.Content, nil
}
