package generator

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// =============================================================================
// OPENAI
// =============================================================================

type openAI struct {
	model       string
	baseURL     string
	temperature float32
}

func newOpenAI(cfg Config) *openAI {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}
	return &openAI{model: model, baseURL: cfg.BaseURL, temperature: cfg.Temperature}
}

func (o *openAI) name() string { return "openai" }

func (o *openAI) complete(ctx context.Context, hc *http.Client, credential, prompt string) (string, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(credential),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if o.baseURL != "" {
		opts = append(opts, option.WithBaseURL(o.baseURL))
	}
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(float64(o.temperature)),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
