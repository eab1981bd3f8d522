package generator

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const sampleScript = "#!/bin/bash\n\necho \"hello\"\n"

// recordingServer answers every request with status/body and records the last request.
type recordingServer struct {
	*httptest.Server
	calls   atomic.Int32
	lastReq atomic.Value // capturedRequest
}

type capturedRequest struct {
	Path    string
	Header  http.Header
	Body    string
	Instant time.Time
}

func newRecordingServer(t *testing.T, status int, body string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rs.calls.Add(1)
		rs.lastReq.Store(capturedRequest{
			Path:    r.URL.Path,
			Header:  r.Header.Clone(),
			Body:    string(data),
			Instant: time.Now(),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) last(t *testing.T) capturedRequest {
	t.Helper()
	v, ok := rs.lastReq.Load().(capturedRequest)
	require.True(t, ok, "no request recorded")
	return v
}

func geminiBody(text string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":` + jsonString(text) + `}]},"finishReason":"STOP"}]}`
}

func openAIBody(text string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":` + jsonString(text) + `},"finish_reason":"stop"}]}`
}

func anthropicBody(text string) string {
	return `{"id":"msg_1","type":"message","role":"assistant","model":"claude-sonnet-4-5","content":[{"type":"text","text":` + jsonString(text) + `}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`
}

func jsonString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

func newService(t *testing.T, provider, baseURL string) *Service {
	t.Helper()
	svc, err := New(Config{Provider: provider, BaseURL: baseURL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return svc
}

// =============================================================================
// FACTORY
// =============================================================================

func TestNew_Providers(t *testing.T) {
	for _, p := range []struct{ in, want string }{
		{"", "gemini"}, {"gemini", "gemini"}, {"Google", "gemini"},
		{"openai", "openai"}, {"open-ai", "openai"},
		{"anthropic", "anthropic"}, {"claude", "anthropic"},
	} {
		svc, err := New(Config{Provider: p.in})
		require.NoError(t, err, p.in)
		assert.Equal(t, p.want, svc.Provider())
	}

	_, err := New(Config{Provider: "zai"})
	assert.Error(t, err)
}

func TestGenerate_BlankCredentialIsAuthError(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, geminiBody(sampleScript))
	svc := newService(t, "gemini", srv.URL)

	_, err := svc.Generate(context.Background(), "   ", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, int32(0), srv.calls.Load(), "no network call without a credential")
}

// =============================================================================
// GEMINI
// =============================================================================

func TestGemini_Success(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, geminiBody("```bash\n"+sampleScript+"```"))
	svc := newService(t, "gemini", srv.URL)

	got, err := svc.Generate(context.Background(), "test-key", "add menu for Browsers", "#!/bin/bash\n")
	require.NoError(t, err)
	assert.Equal(t, sampleScript, got)

	req := srv.last(t)
	assert.True(t, strings.HasSuffix(req.Path, ":generateContent"), req.Path)
	assert.Contains(t, req.Path, "gemini-2.5-flash")
	assert.Equal(t, "test-key", req.Header.Get("x-goog-api-key"))

	prompt := gjson.Get(req.Body, "contents.0.parts.0.text").String()
	assert.Contains(t, prompt, `request: "add menu for Browsers"`)
	assert.Contains(t, prompt, "Preserve every existing section")
	assert.Contains(t, prompt, "Return ONLY the complete shell script")
	assert.Contains(t, prompt, "#!/bin/bash\n")
}

func TestGemini_Unauthorized(t *testing.T) {
	srv := newRecordingServer(t, http.StatusUnauthorized,
		`{"error":{"code":401,"message":"Request had invalid authentication credentials.","status":"UNAUTHENTICATED"}}`)
	svc := newService(t, "gemini", srv.URL)

	_, err := svc.Generate(context.Background(), "bad-key", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
	assert.False(t, errors.Is(err, ErrUpstream))
}

func TestGemini_InvalidKeyBadRequest(t *testing.T) {
	srv := newRecordingServer(t, http.StatusBadRequest,
		`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`)
	svc := newService(t, "gemini", srv.URL)

	_, err := svc.Generate(context.Background(), "bad-key", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuth)
}

func TestGemini_ServerError(t *testing.T) {
	srv := newRecordingServer(t, http.StatusInternalServerError,
		`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`)
	svc := newService(t, "gemini", srv.URL)

	_, err := svc.Generate(context.Background(), "key", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGemini_EmptyResult(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, geminiBody("  \n\n  "))
	svc := newService(t, "gemini", srv.URL)

	_, err := svc.Generate(context.Background(), "key", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestGemini_FenceOnlyIsEmptyResult(t *testing.T) {
	for _, reply := range []string{"```", "```bash\n```", "\n```\n"} {
		srv := newRecordingServer(t, http.StatusOK, geminiBody(reply))
		svc := newService(t, "gemini", srv.URL)

		_, err := svc.Generate(context.Background(), "key", "add menu", "")
		assert.ErrorIs(t, err, ErrEmptyResult, "reply %q", reply)
	}
}

func TestGenerate_NetworkFailureIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	svc := newService(t, "openai", url+"/v1/")
	_, err := svc.Generate(context.Background(), "key", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGenerate_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	svc := newService(t, "openai", srv.URL+"/v1/")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Generate(ctx, "key", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrUpstream))
}

// =============================================================================
// OPENAI
// =============================================================================

func TestOpenAI_Success(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, openAIBody(sampleScript))
	svc := newService(t, "openai", srv.URL+"/v1/")

	got, err := svc.Generate(context.Background(), "sk-test", "add menu for Editors", "")
	require.NoError(t, err)
	assert.Equal(t, sampleScript, got)

	req := srv.last(t)
	assert.True(t, strings.HasSuffix(req.Path, "/chat/completions"), req.Path)
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, "gpt-4o", gjson.Get(req.Body, "model").String())
	assert.Equal(t, "user", gjson.Get(req.Body, "messages.0.role").String())
	assert.Contains(t, gjson.Get(req.Body, "messages.0.content").String(), "(empty)")
}

func TestOpenAI_ErrorsAreNotRetried(t *testing.T) {
	srv := newRecordingServer(t, http.StatusServiceUnavailable, `{"error":{"message":"overloaded","type":"server_error"}}`)
	svc := newService(t, "openai", srv.URL+"/v1/")

	_, err := svc.Generate(context.Background(), "sk-test", "add menu", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(1), srv.calls.Load())
}

func TestOpenAI_Forbidden(t *testing.T) {
	srv := newRecordingServer(t, http.StatusForbidden, `{"error":{"message":"forbidden","type":"invalid_request_error"}}`)
	svc := newService(t, "openai", srv.URL+"/v1/")

	_, err := svc.Generate(context.Background(), "sk-test", "add menu", "")
	assert.ErrorIs(t, err, ErrAuth)
}

// =============================================================================
// ANTHROPIC
// =============================================================================

func TestAnthropic_Success(t *testing.T) {
	srv := newRecordingServer(t, http.StatusOK, anthropicBody("\n\n"+sampleScript+"\n\n"))
	svc := newService(t, "anthropic", srv.URL)

	got, err := svc.Generate(context.Background(), "ant-key", "add menu for Games", sampleScript)
	require.NoError(t, err)
	assert.Equal(t, sampleScript, got)

	req := srv.last(t)
	assert.True(t, strings.HasSuffix(req.Path, "/v1/messages"), req.Path)
	assert.Equal(t, "ant-key", req.Header.Get("X-Api-Key"))
	assert.Equal(t, int64(anthropicMaxTokens), gjson.Get(req.Body, "max_tokens").Int())
	assert.Contains(t, req.Body, "add menu for Games")
}

func TestAnthropic_Unauthorized(t *testing.T) {
	srv := newRecordingServer(t, http.StatusUnauthorized,
		`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	svc := newService(t, "anthropic", srv.URL)

	_, err := svc.Generate(context.Background(), "ant-key", "add menu", "")
	assert.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, int32(1), srv.calls.Load())
}
