package providers

import (
	"encoding/json"
	"fmt"
)

const (
	defaultGroqBaseURL = "https://api.groq.com"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

// Groq is the descriptor for Groq's OpenAI-compatible endpoint.
// Note the /openai prefix in the path; everything else follows the
// chat-completions dialect.
type Groq struct {
	BaseURL string
	ModelID string
}

// NewGroq returns the Groq descriptor with production defaults.
func NewGroq() *Groq {
	return &Groq{
		BaseURL: defaultGroqBaseURL,
		ModelID: defaultGroqModel,
	}
}

func (g *Groq) ID() string          { return "groq" }
func (g *Groq) DisplayName() string { return "Groq" }
func (g *Groq) Model() string       { return g.ModelID }

func (g *Groq) Pricing() Pricing {
	// llama-3.3-70b: $0.59 / $0.79 per million tokens.
	return Pricing{InputPerToken: 0.59 / 1e6, OutputPerToken: 0.79 / 1e6}
}

func (g *Groq) RetryableStatus(code int) bool { return retryableDefault[code] }

// BuildRequest builds a chat completions call against the /openai prefix.
func (g *Groq) BuildRequest(apiKey, prompt string, maxTokens int) (*Request, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:     g.ModelID,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal groq request: %w", err)
	}

	return &Request{
		URL: g.BaseURL + "/openai/v1/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
		},
		Body: body,
	}, nil
}

// ExtractText returns the first choice's message content.
func (g *Groq) ExtractText(body []byte) (string, error) {
	return extractChatCompletion("groq", body)
}
