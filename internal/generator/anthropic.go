package generator

import (
	"context"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// =============================================================================
// ANTHROPIC
// =============================================================================

const anthropicMaxTokens = 8192

type anthropicClaude struct {
	model       string
	baseURL     string
	temperature float32
}

func newAnthropic(cfg Config) *anthropicClaude {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	return &anthropicClaude{model: model, baseURL: cfg.BaseURL, temperature: cfg.Temperature}
}

func (a *anthropicClaude) name() string { return "anthropic" }

func (a *anthropicClaude) complete(ctx context.Context, hc *http.Client, credential, prompt string) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if a.baseURL != "" {
		opts = append(opts, option.WithBaseURL(a.baseURL))
	}
	client := anthropic.NewClient(opts...)

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(float64(a.temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
