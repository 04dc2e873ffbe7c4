package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompleteSuccess(t *testing.T) {
	var got request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"content": [{"type": "text", "text": "a helpful answer"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	client, err := New(Options{ApiKey: "test-key", BaseUrl: server.URL})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "be helpful", "what is the trail like?", 150)
	require.NoError(t, err)
	require.Equal(t, "a helpful answer", text)

	require.Equal(t, DefaultModel, got.Model)
	require.Equal(t, 150, got.MaxTokens)
	require.Equal(t, "be helpful", got.System)
	require.Equal(t, []Message{{Role: "user", Content: "what is the trail like?"}}, got.Messages)
}

func TestCompleteRateLimitIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	client, err := New(Options{ApiKey: "test-key", BaseUrl: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "", "prompt", 150)
	require.Error(t, err)

	var transient TransientError
	require.True(t, errors.As(err, &transient))
	require.Contains(t, err.Error(), "rate_limit_error")
}

func TestCompleteBadRequestIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad prompt"}}`))
	}))
	defer server.Close()

	client, err := New(Options{ApiKey: "test-key", BaseUrl: server.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "", "prompt", 150)
	require.Error(t, err)

	var transient TransientError
	require.False(t, errors.As(err, &transient))
}

func TestCompleteTransportErrorIsTransient(t *testing.T) {
	client, err := New(Options{ApiKey: "test-key", BaseUrl: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "", "prompt", 150)
	require.Error(t, err)

	var transient TransientError
	require.True(t, errors.As(err, &transient))
}

func TestNewRequiresApiKey(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
