package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/virtgrid/pkg/cache"
	"github.com/matzehuels/virtgrid/pkg/errors"
)

const layoutJSON = `{"items":[{"key":"a","x":0,"y":0,"width":10,"height":10}]}`

func newTestClient(t *testing.T, srv *httptest.Server) (*Client, cache.Cache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	client := NewClient(c, "layout:", time.Hour, map[string]string{"Authorization": "Bearer token"})
	client.http = srv.Client()
	client.retryDelay = time.Millisecond
	return client, c
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "", time.Hour, nil)
	if client.cache == nil {
		t.Error("nil cache should be replaced by a null cache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/l.json": true,
		"http://localhost:8080/l":    true,
		"layout.json":                false,
		"/tmp/http:/x":               false,
		"ftp://example.com/l.json":   false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFetchLayout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, layoutJSON)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv)
	ctx := context.Background()

	l, err := client.FetchLayout(ctx, srv.URL, false)
	if err != nil {
		t.Fatalf("FetchLayout: %v", err)
	}
	if len(l.Items) != 1 || l.Items[0].Key != "a" {
		t.Errorf("items = %+v", l.Items)
	}

	if _, err := client.FetchLayout(ctx, srv.URL, false); err != nil {
		t.Fatalf("second FetchLayout: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1 (second fetch cached)", n)
	}

	if _, err := client.FetchLayout(ctx, srv.URL, true); err != nil {
		t.Fatalf("refresh FetchLayout: %v", err)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server called %d times, want 2 after refresh", n)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, layoutJSON)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv)
	if _, err := client.Fetch(context.Background(), srv.URL, false); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errors.Code
		calls  int32
	}{
		{"not found", http.StatusNotFound, "", errors.ErrCodeNotFound, 1},
		{"client error", http.StatusForbidden, "", errors.ErrCodeNetwork, 1},
		{"server error", http.StatusInternalServerError, "", errors.ErrCodeNetwork, 3},
		{"bad layout", http.StatusOK, `{"items":[{"key":""}]}`, errors.ErrCodeInvalidLayout, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			client, _ := newTestClient(t, srv)
			_, err := client.FetchLayout(context.Background(), srv.URL, false)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if n := calls.Load(); n != tt.calls {
				t.Errorf("server called %d times, want %d", n, tt.calls)
			}
		})
	}
}

func TestFetchBodyTooLarge(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, layoutJSON)
	}))
	defer srv.Close()

	client, c := newTestClient(t, srv)
	client.maxBody = int64(len(layoutJSON)) - 1

	_, err := client.FetchLayout(context.Background(), srv.URL, false)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
	if _, ok, _ := c.Get(context.Background(), "layout:"+srv.URL); ok {
		t.Error("oversized body should not be cached")
	}

	client.maxBody = int64(len(layoutJSON))
	if _, err := client.FetchLayout(context.Background(), srv.URL, false); err != nil {
		t.Errorf("body at the limit: %v", err)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	n := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		n++
		return fmt.Errorf("permanent")
	})
	if err == nil || n != 1 {
		t.Errorf("non-retryable: err=%v calls=%d, want error after 1 call", err, n)
	}

	n = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		n++
		if n < 2 {
			return &RetryableError{Err: fmt.Errorf("transient")}
		}
		return nil
	})
	if err != nil || n != 2 {
		t.Errorf("retryable: err=%v calls=%d, want success after 2 calls", err, n)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err = Retry(cctx, 3, time.Hour, func() error {
		return &RetryableError{Err: fmt.Errorf("transient")}
	})
	if err != context.Canceled {
		t.Errorf("cancelled: err=%v, want context.Canceled", err)
	}
}
