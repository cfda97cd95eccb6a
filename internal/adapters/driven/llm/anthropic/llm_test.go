package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	require.Error(t, err)

	svc, err := NewLLMService(Config{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestChat_SystemAndImages(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello "},{"type":"text","text":"there"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "rules"},
		{Role: driven.RoleUser, Content: "read", Images: []driven.ImageAttachment{{MIMEType: "image/png", Data: []byte("abc")}}},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
	assert.Equal(t, "rules", got.System)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)

	blocks := got.Messages[0].Content
	require.Len(t, blocks, 2)
	assert.Equal(t, "image", blocks[0].Type)
	require.NotNil(t, blocks[0].Source)
	assert.Equal(t, "base64", blocks[0].Source.Type)
	assert.Equal(t, "image/png", blocks[0].Source.MediaType)
	assert.Equal(t, "YWJj", blocks[0].Source.Data)
	assert.Equal(t, "text", blocks[1].Type)
	assert.Equal(t, "read", blocks[1].Text)
}

func TestChat_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"too large"}}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "x"}}, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
