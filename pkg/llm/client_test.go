package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinterpreter/oi/pkg/httpclient"
	"github.com/openinterpreter/oi/pkg/interpreter"
)

func TestClient_Complete(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer server.Close()

	client := New(interpreter.LLM{
		Model:       "openai/local-model",
		Temperature: 0.3,
		MaxTokens:   interpreter.IntPtr(100),
		APIBase:     server.URL + "/v1/",
		APIKey:      "sk-test",
		APIVersion:  "2024-02-01",
	})

	reply, err := client.Complete(context.Background(), "be helpful", []interpreter.Message{{Role: "user", Content: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	assert.Equal(t, "local-model", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, 100, *got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "be helpful"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "hello"}, got.Messages[1])
}

func TestClient_CompleteErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("api-version") {
		case "empty":
			_, _ = w.Write([]byte(`{"choices":[]}`))
		default:
			http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	client := New(interpreter.LLM{Model: "gpt-4", APIBase: server.URL, APIVersion: "empty"})
	_, err := client.Complete(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	client = New(interpreter.LLM{Model: "gpt-4", APIBase: server.URL})
	_, err = client.Complete(context.Background(), "", nil)
	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestNew_EnvFallback(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-env")
	t.Setenv(EnvAPIBase, "")

	client := New(interpreter.LLM{Model: "gpt-4"})
	assert.Equal(t, "sk-env", client.settings.APIKey)
	assert.Equal(t, DefaultAPIBase, client.settings.APIBase)
}

func TestModelHelpers(t *testing.T) {
	assert.Equal(t, "gpt-4", ModelName("gpt-4"))
	assert.Equal(t, "llama3", ModelName("ollama/llama3"))

	assert.True(t, HostedByOpenAI("gpt-4-1106-preview"))
	assert.False(t, HostedByOpenAI("openai/local"))
	assert.False(t, HostedByOpenAI("claude-3"))
}
