package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a validated config pointing at endpoint.
func newTestConfig(t *testing.T, endpoint, apiKey string) *Config {
	t.Helper()
	config := &Config{
		Upstream:  endpoint,
		APIKeyEnv: defaultAPIKeyEnv,
		APIKey:    apiKey,
	}
	require.NoError(t, config.normalize())
	return config
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestUpstreamForwardSendsBodyAndHeaders(t *testing.T) {
	var (
		gotMethod, gotAuth, gotContentType, gotPath string
		gotBody                                     []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1"}`)
	}))
	defer server.Close()

	upstream := NewUpstream(newTestConfig(t, server.URL+"/v1/chat/completions", "sk-test"), nil)
	body := []byte(`{"model":"deepseek-chat","messages":[{"role":"user","content":"hi"}]}`)

	resp, err := upstream.Forward(context.Background(), body)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, body, gotBody)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.Equal(t, `{"id":"chatcmpl-1"}`, string(resp.Body))
}

func TestUpstreamForwardReturnsErrorStatusesAsResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"slow down"}}`)
	}))
	defer server.Close()

	upstream := NewUpstream(newTestConfig(t, server.URL, "sk-test"), nil)

	resp, err := upstream.Forward(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, `{"error":{"message":"slow down"}}`, string(resp.Body))
}

func TestUpstreamForwardTransportError(t *testing.T) {
	failing := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	upstream := NewUpstream(newTestConfig(t, "http://upstream.invalid/v1/chat/completions", "sk-test"), failing)

	resp, err := upstream.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Nil(t, resp)

	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	assert.Equal(t, `Post "http://upstream.invalid/v1/chat/completions": connection refused`, err.Error())
}

func TestUpstreamForwardTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	config := newTestConfig(t, server.URL, "sk-test")
	upstream := NewUpstream(config, nil)
	upstream.client.Timeout = 50 * time.Millisecond

	_, err := upstream.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)

	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	assert.True(t, urlErr.Timeout())
}

func TestUpstreamForwardHonorsCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	upstream := NewUpstream(newTestConfig(t, server.URL, "sk-test"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := upstream.Forward(ctx, []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
