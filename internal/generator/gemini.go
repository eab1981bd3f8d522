package generator

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GEMINI
// =============================================================================

type gemini struct {
	model       string
	baseURL     string
	temperature float32
}

func newGemini(cfg Config) *gemini {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &gemini{model: model, baseURL: cfg.BaseURL, temperature: cfg.Temperature}
}

func (g *gemini) name() string { return "gemini" }

func (g *gemini) complete(ctx context.Context, hc *http.Client, credential, prompt string) (string, error) {
	cc := &genai.ClientConfig{
		APIKey:     credential,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", err
	}
	return geminiText(resp), nil
}

// geminiText concatenates the non-thought text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
