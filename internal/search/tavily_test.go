package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	searchSleepFunc = func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}
}

func newTestClient(t *testing.T, url string, retries int) *TavilyClient {
	t.Helper()
	c, err := NewTavilyClient(model.SearchConfig{
		APIKey:     "tvly-test",
		BaseURL:    url,
		Timeout:    5 * time.Second,
		MaxRetries: retries,
	}, model.HTTPConfig{UserAgent: "pitchcheck/test"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestTavilyClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req tavilyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tvly-test", req.APIKey)
		assert.Equal(t, "Jane Doe startup founder CEO CTO entrepreneur", req.Query)
		assert.Equal(t, 1, req.MaxResults)

		_, _ = w.Write([]byte(`{"query":"q","results":[
			{"title":"Jane Doe - LinkedIn","url":"https://linkedin.com/in/janedoe","content":"CTO at Acme","score":0.91},
			{"title":"extra","url":"https://example.com","content":"","score":0.1}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	resp, err := c.Search(context.Background(), "  Jane Doe startup founder CEO CTO entrepreneur ", 1)
	require.NoError(t, err)

	require.Len(t, resp.Results, 1, "results are capped at maxResults")
	assert.Equal(t, "https://linkedin.com/in/janedoe", resp.Results[0].URL)
	assert.Equal(t, "CTO at Acme", resp.Results[0].Content)
	assert.InDelta(t, 0.91, resp.Results[0].Score, 1e-9)
}

func TestTavilyClient_RetriesTransientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"detail":{"error":"rate limited"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 2)
	resp, err := c.Search(context.Background(), "acme market research statistics data", 3)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTavilyClient_PermanentError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":{"error":"Unauthorized: missing or invalid API key."}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 3)
	_, err := c.Search(context.Background(), "q", 2)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "invalid API key")
	assert.True(t, model.IsKind(err, model.KindUpstream))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTavilyClient_EmptyQuery(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0", 0)
	_, err := c.Search(context.Background(), "   ", 3)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.True(t, model.IsKind(err, model.KindValidation))
}

func TestNewTavilyClient_RequiresKey(t *testing.T) {
	_, err := NewTavilyClient(model.SearchConfig{}, model.HTTPConfig{}, nil)
	assert.Error(t, err)
}

func TestResponse_URLs(t *testing.T) {
	resp := &Response{Results: []model.SearchHit{
		{URL: "https://a.com"}, {URL: ""}, {URL: "https://b.com"}, {URL: "https://a.com"},
	}}
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, resp.URLs())

	var nilResp *Response
	assert.Nil(t, nilResp.URLs())
	assert.NotNil(t, nilResp.Hits())
}
