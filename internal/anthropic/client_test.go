package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New("", "some-model")
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key")
}

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New("test-key", "test-model")
	require.NoError(t, err)
	c.baseURL = srv.URL
	return c
}

func TestComplete(t *testing.T) {
	var gotReq struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var gotHeaders http.Header

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"  generated digest \n"}]}`))
	})

	out, err := c.Complete(context.Background(), "the prompt", 512)
	require.NoError(t, err)
	require.Equal(t, "generated digest", out)

	require.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	require.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	require.Equal(t, "application/json", gotHeaders.Get("content-type"))

	require.Equal(t, "test-model", gotReq.Model)
	require.Equal(t, 512, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	require.Equal(t, "user", gotReq.Messages[0].Role)
	require.Equal(t, "the prompt", gotReq.Messages[0].Content)
}

func TestCompleteDefaultMaxTokens(t *testing.T) {
	var gotMax int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MaxTokens int `json:"max_tokens"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotMax = req.MaxTokens
		w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	})

	_, err := c.Complete(context.Background(), "p", 0)
	require.NoError(t, err)
	require.Equal(t, DefaultMaxTokens, gotMax)
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"overloaded_error"}}`, http.StatusTooManyRequests)
	})

	_, err := c.Complete(context.Background(), "p", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestCompleteEmptyContent(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	})

	_, err := c.Complete(context.Background(), "p", 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty response")
}

func TestCompleteMalformedBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := c.Complete(context.Background(), "p", 0)
	require.Error(t, err)
}
