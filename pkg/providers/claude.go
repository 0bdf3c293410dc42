package providers

import (
	"encoding/json"
	"fmt"
)

const (
	// claudeAPIVersion is the anthropic-version header value.
	claudeAPIVersion = "2023-06-01"

	defaultClaudeBaseURL = "https://api.anthropic.com"
	defaultClaudeModel   = "claude-sonnet-4-20250514"
)

// Claude is the descriptor for Anthropic's Messages API.
type Claude struct {
	// BaseURL is the API origin. Overridable for tests and proxies.
	BaseURL string

	// ModelID is the model requests are built for.
	ModelID string
}

// NewClaude returns the Claude descriptor with production defaults.
func NewClaude() *Claude {
	return &Claude{
		BaseURL: defaultClaudeBaseURL,
		ModelID: defaultClaudeModel,
	}
}

func (c *Claude) ID() string          { return "claude" }
func (c *Claude) DisplayName() string { return "Claude" }
func (c *Claude) Model() string       { return c.ModelID }

func (c *Claude) Pricing() Pricing {
	// claude-sonnet-4: $3 / $15 per million tokens.
	return Pricing{InputPerToken: 3.0 / 1e6, OutputPerToken: 15.0 / 1e6}
}

func (c *Claude) RetryableStatus(code int) bool { return retryableDefault[code] }

// claudeRequest is the Messages API request body.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the subset of the Messages API response we consume.
type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// BuildRequest builds a Messages API call. Anthropic requires max_tokens,
// so zero falls back to 4096.
func (c *Claude) BuildRequest(apiKey, prompt string, maxTokens int) (*Request, error) {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	body, err := json.Marshal(claudeRequest{
		Model:     c.ModelID,
		MaxTokens: maxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claude request: %w", err)
	}

	return &Request{
		URL: c.BaseURL + "/v1/messages",
		Headers: map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": claudeAPIVersion,
			"Content-Type":      "application/json",
		},
		Body: body,
	}, nil
}

// ExtractText returns the first text content block.
func (c *Claude) ExtractText(body []byte) (string, error) {
	var resp claudeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal claude response: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("claude response contains no text content block")
}
