package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOllamaCompleteRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "llama3.2", req.Model)
		require.False(t, req.Stream)
		require.Contains(t, req.Prompt, "buy milk")

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "  Buy milk.  "})
	}))
	defer server.Close()

	backend := NewOllama(server.URL, "llama3.2", time.Second)
	got, err := backend.Complete(context.Background(), "Clean this up: buy milk")
	require.NoError(t, err)
	require.Equal(t, "Buy milk.", got)
}

func TestOllamaCompleteServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	backend := NewOllama(server.URL, "llama3.2", time.Second)
	_, err := backend.Complete(context.Background(), "hello")
	require.Error(t, err)
	require.True(t, IsDegraded(err))
}

func TestOllamaCompleteConnectionRefusedIsUnavailable(t *testing.T) {
	backend := NewOllama("http://127.0.0.1:1", "llama3.2", 500*time.Millisecond)
	_, err := backend.Complete(context.Background(), "hello")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestOllamaCompleteTimeout(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Read the body first so the server sees the client hang up;
		// blocking with the body unread would stall server.Close.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	backend := NewOllama(server.URL, "llama3.2", 100*time.Millisecond)
	_, err := backend.Complete(context.Background(), "hello")
	<-started
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestOllamaCompletePayloadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Error: "model missing"})
	}))
	defer server.Close()

	backend := NewOllama(server.URL, "llama3.2", time.Second)
	_, err := backend.Complete(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "model missing")
}
