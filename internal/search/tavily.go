package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/logger"
	"github.com/ppiankov/pitchcheck/internal/metrics"
	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/util"
	"github.com/ppiankov/pitchcheck/internal/worker"
	"go.uber.org/zap"
)

const rateKey = "search"

// APIError is a non-2xx reply from the search API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search API error (%d): %s", e.StatusCode, e.Message)
}

// Temporary reports whether the request may succeed on retry
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// ErrEmptyQuery is returned before any request is made
var ErrEmptyQuery = errors.New("empty search query")

// searchSleepFunc waits between attempts (injectable for tests)
var searchSleepFunc = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// TavilyClient calls the Tavily search API
type TavilyClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *worker.Limiter
	maxRetries int
	logger     *zap.Logger
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// NewTavilyClient creates a client; the API key is required
func NewTavilyClient(cfg model.SearchConfig, httpCfg model.HTTPConfig, l *zap.Logger) (*TavilyClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Tavily API key is required (set TAVILY_API_KEY)")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	httpCfg.Timeout = timeout
	return &TavilyClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: util.NewHTTPClient(httpCfg),
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		maxRetries: cfg.MaxRetries,
		logger:     logger.OrNop(l),
	}, nil
}

// Search runs query, retrying 429 and 5xx replies with exponential backoff
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.NewError(model.KindValidation, "search", ErrEmptyQuery)
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx, rateKey); err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, query, maxResults)
		if err == nil {
			metrics.SearchCalls.WithLabelValues("ok").Inc()
			c.logger.Debug("search completed",
				zap.String("query", query),
				zap.Int("results", len(resp.Results)))
			return resp, nil
		}
		lastErr = err

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Temporary() || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		c.logger.Warn("retrying search",
			zap.String("query", query),
			zap.Int("status", apiErr.StatusCode),
			zap.Duration("backoff", backoff))
		if err := searchSleepFunc(ctx, backoff); err != nil {
			return nil, err
		}
	}

	metrics.SearchCalls.WithLabelValues("error").Inc()
	return nil, model.NewError(model.KindUpstream, fmt.Sprintf("search %q", query), lastErr)
}

func (c *TavilyClient) do(ctx context.Context, query string, maxResults int) (*Response, error) {
	body, err := json.Marshal(tavilyRequest{APIKey: c.apiKey, Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		var detail struct {
			Detail struct {
				Error string `json:"error"`
			} `json:"detail"`
		}
		if json.Unmarshal(respBody, &detail) == nil && detail.Detail.Error != "" {
			msg = detail.Detail.Error
		}
		return nil, &APIError{StatusCode: httpResp.StatusCode, Message: msg}
	}

	var tr tavilyResponse
	if err := json.Unmarshal(respBody, &tr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	out := &Response{Query: query, Results: make([]model.SearchHit, 0, len(tr.Results))}
	for _, r := range tr.Results {
		out.Results = append(out.Results, model.SearchHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	if len(out.Results) > maxResults {
		out.Results = out.Results[:maxResults]
	}
	return out, nil
}
