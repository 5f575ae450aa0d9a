package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	provider string
	err      error
}

type fakeRecorder struct {
	calls []recordedCall
}

func (f *fakeRecorder) RecordUpstream(provider string, err error, _ time.Duration) {
	f.calls = append(f.calls, recordedCall{provider: provider, err: err})
}

func TestOpenAIClient_Complete_SendsPrompts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-3.5-turbo", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, chatMessage{Role: "system", Content: "You summarize text very concisely."}, req.Messages[0])
		assert.Equal(t, chatMessage{Role: "user", Content: "Please summarize: Budget review with finance"}, req.Messages[1])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Budget review."}},{"message":{"role":"assistant","content":"ignored"}}]}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	client := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL}, rec)

	got, err := client.Complete(context.Background(), "Budget review with finance")
	require.NoError(t, err)
	assert.Equal(t, "Budget review.", got)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "openai", rec.calls[0].provider)
	assert.NoError(t, rec.calls[0].err)
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, nil)

	got, err := client.Complete(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenAIClient_Complete_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, rec)

	_, err := client.Complete(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	require.Len(t, rec.calls, 1)
	assert.Error(t, rec.calls[0].err)
}

func TestOpenAIClient_Complete_UsesConfiguredModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini"}, nil)

	_, err := client.Complete(context.Background(), "text")
	require.NoError(t, err)
}

func TestOpenAIClient_Configured(t *testing.T) {
	assert.True(t, NewOpenAIClient(OpenAIConfig{APIKey: "k"}, nil).Configured())
	assert.False(t, NewOpenAIClient(OpenAIConfig{}, nil).Configured())
}
