// Package fetch retrieves the primary HTML document for a target URL. This
// is the plain HTTP path that feeds structural analysis; rendered snapshots
// come from the detect package instead.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/SameerVers3/Scrapply/internal/ratelimit"
	"github.com/SameerVers3/Scrapply/pkg/models"
	"github.com/rs/zerolog"
)

// Error is returned for any failed page fetch. StatusCode is zero when the
// request never produced a response.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// redirectLimitError marks a redirect loop, which retrying cannot fix.
type redirectLimitError struct {
	limit int
}

func (e *redirectLimitError) Error() string {
	return fmt.Sprintf("stopped after %d redirects", e.limit)
}

// Options bound a fetch. Zero values take the listed defaults.
type Options struct {
	Timeout      time.Duration // default 10s
	UserAgent    string
	MaxBodyBytes int64       // default 2MB; larger bodies are truncated, not failed
	MaxRedirects int         // default 3
	Retry        RetryConfig // default DefaultRetryConfig
}

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 2_000_000
	defaultMaxRedirects = 3
)

// Fetcher performs rate-limited HTTP GETs.
type Fetcher struct {
	client  *http.Client
	limiter ratelimit.Limiter
	opts    Options
	log     zerolog.Logger
}

func New(limiter ratelimit.Limiter, opts Options, log zerolog.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = defaultMaxRedirects
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryConfig()
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.MaxRedirects {
				return &redirectLimitError{limit: opts.MaxRedirects}
			}
			return nil
		},
	}

	return &Fetcher{
		client:  client,
		limiter: limiter,
		opts:    opts,
		log:     log.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch GETs url and returns the page body capped at MaxBodyBytes. Non-2xx
// responses are errors; an oversized body is truncated with a warning.
// Server errors and timeouts are retried with exponential backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*models.PageSnapshot, error) {
	var snap *models.PageSnapshot
	err := withRetry(ctx, f.opts.Retry, f.log, func() error {
		s, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*models.PageSnapshot, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, &Error{URL: url, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	// Read one byte past the cap to learn whether we truncated.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	truncated := false
	if int64(len(body)) > f.opts.MaxBodyBytes {
		body = body[:f.opts.MaxBodyBytes]
		truncated = true
		f.log.Warn().Str("url", url).Int64("cap", f.opts.MaxBodyBytes).Msg("page body truncated")
	}

	elapsed := time.Since(start)
	f.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", elapsed).
		Msg("page fetched")

	return &models.PageSnapshot{
		URL:        url,
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FetchTime:  elapsed,
		Truncated:  truncated,
	}, nil
}
