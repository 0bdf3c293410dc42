package providers

import (
	"encoding/json"
	"fmt"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o"
)

// OpenAI is the descriptor for OpenAI's Chat Completions API.
type OpenAI struct {
	BaseURL string
	ModelID string
}

// NewOpenAI returns the OpenAI descriptor with production defaults.
func NewOpenAI() *OpenAI {
	return &OpenAI{
		BaseURL: defaultOpenAIBaseURL,
		ModelID: defaultOpenAIModel,
	}
}

func (o *OpenAI) ID() string          { return "chatgpt" }
func (o *OpenAI) DisplayName() string { return "ChatGPT" }
func (o *OpenAI) Model() string       { return o.ModelID }

func (o *OpenAI) Pricing() Pricing {
	// gpt-4o: $2.50 / $10 per million tokens.
	return Pricing{InputPerToken: 2.5 / 1e6, OutputPerToken: 10.0 / 1e6}
}

func (o *OpenAI) RetryableStatus(code int) bool { return retryableDefault[code] }

// chatCompletionRequest is the OpenAI-style request body, shared in shape
// (but not in type) with Mistral and Groq, which speak dialects of the
// same schema against different endpoints.
type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// BuildRequest builds a Chat Completions call with bearer auth.
func (o *OpenAI) BuildRequest(apiKey, prompt string, maxTokens int) (*Request, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:     o.ModelID,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chatgpt request: %w", err)
	}

	return &Request{
		URL: o.BaseURL + "/v1/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
		},
		Body: body,
	}, nil
}

// ExtractText returns the first choice's message content.
func (o *OpenAI) ExtractText(body []byte) (string, error) {
	return extractChatCompletion("chatgpt", body)
}

// extractChatCompletion handles the OpenAI-style response shape used by
// ChatGPT, Mistral, and Groq.
func extractChatCompletion(provider string, body []byte) (string, error) {
	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal %s response: %w", provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s response contains no choices", provider)
	}
	return resp.Choices[0].Message.Content, nil
}
