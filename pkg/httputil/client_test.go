package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	body, err := Fetch(context.Background(), server.Client(), server.URL,
		map[string]string{"User-Agent": "decksmith/test", "Accept": "*/*"},
		map[string]string{"Accept": "application/json"},
	)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(body) != "payload" {
		t.Errorf("Fetch() = %q, want %q", body, "payload")
	}
	if gotUA != "decksmith/test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, later headers should override", gotAccept)
	}
}

func TestFetchStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrNetwork},
		{http.StatusForbidden, ErrNetwork},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"object":"error"}`))
		}))

		_, err := Fetch(context.Background(), server.Client(), server.URL)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: Fetch() error = %v, want %v", tt.status, err, tt.want)
		}
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != tt.status {
			t.Errorf("status %d: error should be a *StatusError with the code", tt.status)
		}
		server.Close()
	}
}

func TestFetchCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Fetch(ctx, server.Client(), server.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestNewHTTPClientDefaultTimeout(t *testing.T) {
	if c := NewHTTPClient(0); c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	if c := NewHTTPClient(time.Second); c.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", c.Timeout)
	}
}

func TestCacheBust(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	tests := []struct {
		ref, want string
	}{
		{"https://img/a.jpg", "https://img/a.jpg?_t=1700000000123"},
		{"https://img/a.jpg?1699999", "https://img/a.jpg?1699999&_t=1700000000123"},
	}
	for _, tt := range tests {
		if got := CacheBust(tt.ref, now); got != tt.want {
			t.Errorf("CacheBust(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
