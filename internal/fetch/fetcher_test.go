package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestFetcher(opts Options) *Fetcher {
	return New(nil, opts, zerolog.Nop())
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "scrapply-test" {
			t.Errorf("user agent = %q, want scrapply-test", ua)
		}
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	snap, err := newTestFetcher(Options{UserAgent: "scrapply-test"}).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.Contains(snap.HTML, "ok") {
		t.Errorf("body = %q, want page content", snap.HTML)
	}
	if snap.StatusCode != 200 {
		t.Errorf("status = %d, want 200", snap.StatusCode)
	}
	if snap.Truncated {
		t.Error("small body should not be truncated")
	}
}

func TestFetchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher(Options{}).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("error type %T, want *fetch.Error", err)
	}
	if fe.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", fe.StatusCode)
	}
}

func TestFetchTruncatesOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer srv.Close()

	snap, err := newTestFetcher(Options{MaxBodyBytes: 1000}).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(snap.HTML) != 1000 {
		t.Errorf("body length = %d, want capped at 1000", len(snap.HTML))
	}
	if !snap.Truncated {
		t.Error("expected truncation flag")
	}
}

func TestFetchRedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every request redirects again; the client must give up.
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(Options{MaxRedirects: 3}).Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error after exceeding redirect limit")
	}
	if !strings.Contains(err.Error(), "redirect") {
		t.Errorf("error = %v, want redirect mention", err)
	}
}

func TestFetchContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestFetcher(Options{}).Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
