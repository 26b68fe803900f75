package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/groomwise/generator"
)

func TestGenerate_SendsConfiguredRequest(t *testing.T) {
	var got struct {
		Model       string   `json:"model"`
		Temperature float32  `json:"temperature"`
		Stop        []string `json:"stop"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Final Answer: hello"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g := NewGenerator(
		generator.WithApiKey("test-key"),
		generator.WithBaseURL(srv.URL),
		generator.WithModel("llama3-8b-8192"),
		generator.WithTemperature(0.7),
		generator.WithStop("\nObservation:"),
	)

	rsp, err := g.Generate(context.Background(), "I have oily skin.")
	require.NoError(t, err)

	assert.Equal(t, "Final Answer: hello", rsp)
	assert.Equal(t, "llama3-8b-8192", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.0001)
	assert.Equal(t, []string{"\nObservation:"}, got.Stop)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "I have oily skin.", got.Messages[0].Content)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	g := NewGenerator(generator.WithApiKey("k"), generator.WithBaseURL(srv.URL))

	_, err := g.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, generator.ErrNoResponse)
}
