// Package generator fulfils synthesis requests against an external text-generation
// service. Every provider receives the same preserve-and-merge prompt and must answer
// with one complete replacement script; responses are never streamed.
package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scriptsmith/internal/logging"
)

// Client is the contract consumed by the synthesis controller.
type Client interface {
	Generate(ctx context.Context, credential, instruction, baseText string) (string, error)
}

// Config selects and tunes a provider.
type Config struct {
	Provider    string // gemini, openai, anthropic
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32

	// Transport overrides the HTTP transport (tests, proxies).
	Transport http.RoundTripper
}

// completer is one provider's single request/response exchange.
type completer interface {
	name() string
	complete(ctx context.Context, hc *http.Client, credential, prompt string) (string, error)
}

// Service implements Client on top of a provider.
type Service struct {
	provider  completer
	timeout   time.Duration
	transport http.RoundTripper
}

var _ Client = (*Service)(nil)

// New builds a Service for the configured provider.
func New(cfg Config) (*Service, error) {
	var p completer
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini", "google":
		p = newGemini(cfg)
	case "openai", "open-ai", "open_ai":
		p = newOpenAI(cfg)
	case "anthropic", "claude":
		p = newAnthropic(cfg)
	default:
		return nil, fmt.Errorf("unknown generator provider: %q", cfg.Provider)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Service{provider: p, timeout: timeout, transport: cfg.Transport}, nil
}

// Provider returns the provider name.
func (s *Service) Provider() string {
	return s.provider.name()
}

// Generate sends the instruction and current script to the provider and returns the
// complete replacement script.
func (s *Service) Generate(ctx context.Context, credential, instruction, baseText string) (string, error) {
	if strings.TrimSpace(credential) == "" {
		return "", fmt.Errorf("%w: no %s API key configured", ErrAuth, s.provider.name())
	}

	prompt, err := BuildPrompt(instruction, baseText)
	if err != nil {
		return "", fmt.Errorf("failed to build prompt: %w", err)
	}

	timer := logging.StartTimer(logging.CategoryGenerator, s.provider.name()+" generate")

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec := newStatusRecorder(s.transport)
	hc := &http.Client{Transport: rec}

	logging.GeneratorDebug("%s request: instruction=%q base=%d bytes prompt=%d bytes",
		s.provider.name(), instruction, len(baseText), len(prompt))

	raw, err := s.provider.complete(callCtx, hc, credential, prompt)
	elapsed := timer.Stop()
	if err != nil {
		if ctx.Err() != nil {
			// The caller gave up; not a service failure.
			logging.Audit().LLMCall(s.provider.name(), elapsed, 0, ctx.Err().Error())
			return "", ctx.Err()
		}
		classified := classify(s.provider.name(), rec.Status(), err)
		logging.Get(logging.CategoryGenerator).Warn("%v", classified)
		logging.Audit().LLMCall(s.provider.name(), elapsed, 0, classified.Error())
		return "", classified
	}

	text := Normalize(raw)
	if text == "" {
		err := fmt.Errorf("%w: %s", ErrEmptyResult, s.provider.name())
		logging.Audit().LLMCall(s.provider.name(), elapsed, 0, err.Error())
		return "", err
	}
	logging.Generator("%s returned %d bytes", s.provider.name(), len(text))
	logging.Audit().LLMCall(s.provider.name(), elapsed, len(text), "")
	return text, nil
}
