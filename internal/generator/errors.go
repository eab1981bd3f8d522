package generator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

var (
	// ErrAuth reports a missing or rejected credential.
	ErrAuth = errors.New("credential missing or rejected")

	// ErrUpstream reports a failed service call: transport error, timeout or non-2xx status.
	ErrUpstream = errors.New("generation service failed")

	// ErrEmptyResult reports a successful call that produced no usable script.
	ErrEmptyResult = errors.New("generation service returned no usable text")
)

// classify maps a provider failure onto the error taxonomy using the HTTP status
// observed on the wire. status is 0 when no response was received.
func classify(provider string, status int, err error) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned HTTP %d: %v", ErrAuth, provider, status, err)
	case status == http.StatusBadRequest && mentionsAPIKey(err):
		return fmt.Errorf("%w: %s rejected the API key: %v", ErrAuth, provider, err)
	case status == 0:
		return fmt.Errorf("%w: %s request failed: %v", ErrUpstream, provider, err)
	default:
		return fmt.Errorf("%w: %s returned HTTP %d: %v", ErrUpstream, provider, status, err)
	}
}

func mentionsAPIKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "api key") || strings.Contains(msg, "api_key")
}

// statusRecorder remembers the status code of the last response that passed through it.
// Provider SDKs each have their own error types; the status on the wire is common to all.
type statusRecorder struct {
	base http.RoundTripper

	mu     sync.Mutex
	status int
}

func newStatusRecorder(base http.RoundTripper) *statusRecorder {
	if base == nil {
		base = http.DefaultTransport
	}
	return &statusRecorder{base: base}
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if err == nil {
		r.mu.Lock()
		r.status = resp.StatusCode
		r.mu.Unlock()
	}
	return resp, err
}

func (r *statusRecorder) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}
