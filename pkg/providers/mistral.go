package providers

import (
	"encoding/json"
	"fmt"
)

const (
	defaultMistralBaseURL = "https://api.mistral.ai"
	defaultMistralModel   = "mistral-small-latest"
)

// Mistral is the descriptor for Mistral's chat completions API.
// The wire schema is an OpenAI dialect on Mistral's own endpoint.
type Mistral struct {
	BaseURL string
	ModelID string
}

// NewMistral returns the Mistral descriptor with production defaults.
func NewMistral() *Mistral {
	return &Mistral{
		BaseURL: defaultMistralBaseURL,
		ModelID: defaultMistralModel,
	}
}

func (m *Mistral) ID() string          { return "mistral" }
func (m *Mistral) DisplayName() string { return "Mistral" }
func (m *Mistral) Model() string       { return m.ModelID }

func (m *Mistral) Pricing() Pricing {
	// mistral-small: $0.10 / $0.30 per million tokens.
	return Pricing{InputPerToken: 0.10 / 1e6, OutputPerToken: 0.30 / 1e6}
}

func (m *Mistral) RetryableStatus(code int) bool { return retryableDefault[code] }

// BuildRequest builds a chat completions call with bearer auth.
func (m *Mistral) BuildRequest(apiKey, prompt string, maxTokens int) (*Request, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:     m.ModelID,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mistral request: %w", err)
	}

	return &Request{
		URL: m.BaseURL + "/v1/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		Body: body,
	}, nil
}

// ExtractText returns the first choice's message content.
func (m *Mistral) ExtractText(body []byte) (string, error) {
	return extractChatCompletion("mistral", body)
}
