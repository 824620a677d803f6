// Package groq is a client for Groq's OpenAI-compatible chat
// completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zerodha/logf"
)

const (
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 30 * time.Second
	// DefaultEndpoint is the chat completions endpoint
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	// DefaultModel used for conversations
	DefaultModel = "llama-3.1-8b-instant"
)

// SystemPrompt frames the assistant as the Vertex AI Tech support
// persona for every completion.
const SystemPrompt = `You are a helpful AI assistant for Vertex AI Tech, a company that builds custom apps, websites, and advanced clones.

Your role:
- Help potential clients understand our services
- Gather information about their project requirements
- Be friendly, professional, and conversational
- Guide them through our service offerings

Our services include:
- App & Website Cloning (Slack, Netflix, TikTok, SoundCloud, E-commerce clones)
- Enhanced Features (real-time chat, AI recommendations, payment gateways, etc.)
- AI & Data Science Solutions
- Web & App Development
- AI Consulting & Training

Keep responses concise (under 200 words) and always be helpful. If they ask about pricing or want to finalize their project, let them know our team will reach out soon.`

// Fallback replies returned by Complete when the API cannot be
// reached. The bot keeps talking even when the model is down.
const (
	ReplyNoCredentials = "I'm sorry, I'm having trouble connecting to my AI service right now. Please try again later."
	ReplyAPIError      = "I'm sorry, I'm having trouble processing your message right now. Please try again later."
	ReplyInternalError = "I'm sorry, I encountered an error while processing your message. Please try again later."
)

// Message is one chat turn in API terms: role is system, user or
// assistant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the Groq chat completions client.
type Client struct {
	HTTPClient *http.Client
	Log        logf.Logger

	APIKey   string
	Endpoint string
	Model    string
}

// Opts configures a Client.
type Opts struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// New creates a new Groq client
func New(log logf.Logger, opts Opts) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Log:      log,
		APIKey:   opts.APIKey,
		Endpoint: opts.Endpoint,
		Model:    opts.Model,
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Completion calls the chat completions endpoint with the system
// prompt prepended and returns the assistant reply.
func (c *Client) Completion(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("groq api key not configured")
	}

	reqBody := completionRequest{
		Model:       c.Model,
		Messages:    append([]Message{{Role: "system", Content: SystemPrompt}}, messages...),
		Stream:      false,
		Temperature: temperature,
		MaxTokens:   200,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// Complete generates a conversational reply from the prior history and
// the current user message. It never returns an error: failures map to
// a canned apology so the conversation flow always has something to
// send.
func (c *Client) Complete(ctx context.Context, history []Message, userMessage string) string {
	if c.APIKey == "" {
		c.Log.Error("Groq API key not configured")
		return ReplyNoCredentials
	}

	messages := append(append([]Message{}, history...), Message{Role: "user", Content: userMessage})

	reply, err := c.Completion(ctx, messages, 0.7)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.Log.Error("Groq API error", "status", apiErr.StatusCode, "body", apiErr.Body)
			return ReplyAPIError
		}
		c.Log.Error("Groq completion failed", "error", err)
		return ReplyInternalError
	}

	return reply
}

// APIError is a non-200 reply from the completions endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("groq API returned status %d: %s", e.StatusCode, e.Body)
}
