package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/ppiankov/pitchcheck/internal/model"
	"github.com/ppiankov/pitchcheck/internal/util"
)

const fetchAttempts = 3

// ErrTooLarge is returned when a download exceeds the configured size cap
var ErrTooLarge = errors.New("deck exceeds size limit")

// pdfMagic opens every PDF file
var pdfMagic = []byte("%PDF-")

// fetchSleepFunc waits between attempts (injectable for tests)
var fetchSleepFunc = func(d time.Duration) { time.Sleep(d) }

// Fetcher downloads pitch decks from URLs into temporary files
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewFetcher creates a fetcher using the shared HTTP settings
func NewFetcher(cfg model.HTTPConfig) *Fetcher {
	client := util.NewHTTPClient(cfg)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	return &Fetcher{httpClient: client, maxBytes: maxBytes}
}

// FetchResult is a downloaded deck on disk
type FetchResult struct {
	Path        string // Temporary file; the caller removes it
	FinalURL    string
	Subject     string
	ContentType string
	Size        int64
}

// Remove deletes the downloaded file
func (r *FetchResult) Remove() {
	if r != nil && r.Path != "" {
		_ = os.Remove(r.Path)
	}
}

// FetchWithRetry downloads rawURL, retrying 429, 5xx and connection failures
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(time.Duration(1<<uint(attempt-1)) * time.Second)
		}
		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// Fetch downloads rawURL once. The body must start with the PDF header.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)
	}

	tmp, err := os.CreateTemp("", "pitchcheck-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	result := &FetchResult{
		Path:        tmp.Name(),
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}

	// One extra byte tells a body at the limit from one over it
	n, err := io.Copy(tmp, io.LimitReader(resp.Body, f.maxBytes+1))
	closeErr := tmp.Close()
	switch {
	case err != nil:
		result.Remove()
		return nil, fmt.Errorf("read body: %w", err)
	case closeErr != nil:
		result.Remove()
		return nil, fmt.Errorf("write temp file: %w", closeErr)
	case n > f.maxBytes:
		result.Remove()
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	result.Size = n

	if err := checkPDFHeader(result.Path); err != nil {
		result.Remove()
		return nil, err
	}

	result.Subject = extractSubject(result.FinalURL)
	return result, nil
}

func checkPDFHeader(p string) error {
	file, err := os.Open(p)
	if err != nil {
		return err
	}
	defer file.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(file, head); err != nil || !bytes.Equal(head, pdfMagic) {
		return model.NewError(model.KindValidation, "downloaded file is not a PDF", nil)
	}
	return nil
}

// IsURL reports whether s looks like an http(s) URL rather than a local path
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// extractSubject names a deck after the last path segment of its URL
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	p := strings.Trim(parsed.Path, "/")
	if p == "" {
		return parsed.Host
	}

	last := path.Base(p)
	last = strings.TrimSuffix(last, path.Ext(last))
	last = strings.ReplaceAll(last, "_", " ")
	last = strings.ReplaceAll(last, "-", " ")
	return last
}

// isRetryableFetchError reports whether err looks like a transient failure
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, code := range []string{"status: 429", "status: 500", "status: 502", "status: 503", "status: 504"} {
		if strings.Contains(s, code) {
			return true
		}
	}
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "timeout")
}
