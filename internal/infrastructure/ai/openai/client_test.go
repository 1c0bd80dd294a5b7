package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

func newTestServer(t *testing.T) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastChat map[string]any

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&lastChat)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"recipe_title\":\"Soup\"}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	})
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-large","usage":{"prompt_tokens":2,"total_tokens":2}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastChat
}

func TestClient(t *testing.T) {
	srv, lastChat := newTestServer(t)
	client, err := NewClient(Options{
		Name:           "openai",
		APIKey:         "test-key",
		BaseURL:        srv.URL + "/v1/",
		Model:          "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-large",
		Timeout:        5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	t.Run("Complete_ShouldSendSystemAndUserMessages", func(t *testing.T) {
		text, err := client.Complete(context.Background(), outbound.CompletionRequest{
			System:      "You are a chef",
			User:        "Make soup",
			MaxTokens:   1500,
			Temperature: 0.2,
		})

		require.NoError(t, err)
		assert.Equal(t, `{"recipe_title":"Soup"}`, text)
		messages := (*lastChat)["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		assert.Equal(t, "Make soup", messages[1].(map[string]any)["content"])
		assert.EqualValues(t, 1500, (*lastChat)["max_tokens"])
	})

	t.Run("Embed_ShouldReturnVector", func(t *testing.T) {
		vec, err := client.Embed(context.Background(), "tomato")

		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	})

	t.Run("Name_ShouldIncludeEmbeddingModel", func(t *testing.T) {
		assert.Equal(t, "openai:text-embedding-3-large", client.Name())
	})
}

func TestNewClient_ShouldRequireAPIKey(t *testing.T) {
	_, err := NewClient(Options{Name: "azure"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestClient_Embed_ShouldFailWithoutModel(t *testing.T) {
	client, err := NewClient(Options{APIKey: "k", Model: "gpt"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "x")
	assert.Error(t, err)
}
