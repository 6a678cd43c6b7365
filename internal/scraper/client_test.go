package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
	"github.com/tullogher/gaa-fixtures/internal/platform/resilience"
)

func TestClientFetchFixturesPage(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<h3 class=\"fix_res_date\">Sunday 15th Jun 2025</h3>"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL:       srv.URL,
		ClubID:        123,
		CountyBoardID: 9,
		Logger:        logging.NewNop(),
	})

	raw, err := c.FetchFixturesPage(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected body")
	}
	if got := gotQuery.Load().(string); got != "club=123&county_board=9" {
		t.Fatalf("query = %q", got)
	}
}

func TestClientRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		MaxRetries: 2,
		Logger:     logging.NewNop(),
	})

	raw, err := c.FetchFixturesPage(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(raw) != "ok" {
		t.Fatalf("body = %q", raw)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestClientDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL:    srv.URL,
		MaxRetries: 3,
		Logger:     logging.NewNop(),
	})

	if _, err := c.FetchFixturesPage(context.Background()); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestClientBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		BaseURL: srv.URL,
		Logger:  logging.NewNop(),
		Breaker: resilience.BreakerConfig{
			FailureThreshold: 2,
			Cooldown:         time.Minute,
			HalfOpenProbes:   1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := c.FetchFixturesPage(context.Background()); err == nil {
			t.Fatalf("fetch %d should fail", i)
		}
	}

	if got := c.breaker.State(); got != resilience.BreakerOpen {
		t.Fatalf("breaker state = %v, want open", got)
	}
	if _, err := c.FetchFixturesPage(context.Background()); err == nil {
		t.Fatal("expected breaker rejection")
	}
}
