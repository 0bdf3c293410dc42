package providers

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// Gemini is the descriptor for Google's Generative Language API.
// Unlike the other providers it authenticates via a query parameter
// rather than a header.
type Gemini struct {
	BaseURL string
	ModelID string
}

// NewGemini returns the Gemini descriptor with production defaults.
func NewGemini() *Gemini {
	return &Gemini{
		BaseURL: defaultGeminiBaseURL,
		ModelID: defaultGeminiModel,
	}
}

func (g *Gemini) ID() string          { return "gemini" }
func (g *Gemini) DisplayName() string { return "Gemini" }
func (g *Gemini) Model() string       { return g.ModelID }

func (g *Gemini) Pricing() Pricing {
	// gemini-2.0-flash: $0.10 / $0.40 per million tokens.
	return Pricing{InputPerToken: 0.10 / 1e6, OutputPerToken: 0.40 / 1e6}
}

func (g *Gemini) RetryableStatus(code int) bool { return retryableDefault[code] }

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// BuildRequest builds a generateContent call with key-in-query auth.
func (g *Gemini) BuildRequest(apiKey, prompt string, maxTokens int) (*Request, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if maxTokens > 0 {
		req.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: maxTokens}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.BaseURL, g.ModelID, url.QueryEscape(apiKey))

	return &Request{
		URL: endpoint,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: body,
	}, nil
}

// ExtractText returns the first candidate's first text part.
func (g *Gemini) ExtractText(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal gemini response: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contains no candidates")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
