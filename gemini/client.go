// Package gemini implements harvest.CompletionClient using Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/harvest"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// Ensure Client implements harvest.CompletionClient at compile time.
var _ harvest.CompletionClient = (*Client)(nil)

// Client implements harvest.CompletionClient using Google Gemini.
type Client struct {
	client *genai.Client
}

// NewClient creates a new Client.
func NewClient(client *genai.Client) *Client {
	return &Client{client: client}
}

// Complete sends a prompt expecting a JSON response and unmarshals it into
// result.
func (c *Client) Complete(ctx context.Context, prompt string, result any) error {
	if prompt == "" {
		return harvest.Errorf(harvest.EINVALID, "prompt required")
	}

	out, err := c.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildJSONConfig(),
	)
	if err != nil {
		return err
	}
	if out == nil {
		return harvest.Errorf(harvest.EINTERNAL, "gemini returned nil result")
	}

	text := stripCodeFence(out.Text())
	if text == "" {
		return harvest.Errorf(harvest.EINTERNAL, "gemini returned empty response")
	}
	if err := json.Unmarshal([]byte(text), result); err != nil {
		return harvest.Errorf(harvest.EINTERNAL, "invalid JSON response: %v", err)
	}
	return nil
}

// GenerateText sends a prompt and returns the plain-text response, bounded by
// maxTokens.
func (c *Client) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if prompt == "" {
		return "", harvest.Errorf(harvest.EINVALID, "prompt required")
	}

	out, err := c.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildTextConfig(maxTokens),
	)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", harvest.Errorf(harvest.EINTERNAL, "gemini returned nil result")
	}

	return out.Text(), nil
}

// BuildJSONConfig returns the GenerateContentConfig for structured JSON
// responses.
func BuildJSONConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// BuildTextConfig returns the GenerateContentConfig for plain-text responses.
func BuildTextConfig(maxTokens int) *genai.GenerateContentConfig {
	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	return config
}

// stripCodeFence removes a markdown code fence wrapper, which some models
// emit even when asked for bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
