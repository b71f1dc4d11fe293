package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiter_PerIPBuckets(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatalf("burst of 2 should be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("third call within the same instant should be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("other ip has its own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatalf("token should refill after one second")
	}
}

func TestIPRateLimiter_SweepsIdleVisitors(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.9")
	now = now.Add(visitorIdle + time.Second)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("10.0.0.1")
	}

	if _, ok := l.visitors["10.0.0.9"]; ok {
		t.Fatalf("idle visitor should have been swept")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	if got := clientIP(r); got != "192.0.2.1" {
		t.Fatalf("clientIP=%q", got)
	}

	r.Header.Set("X-Forwarded-For", " 203.0.113.7 , 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.7" {
		t.Fatalf("clientIP with xff=%q", got)
	}
}

func TestSetMaxAge(t *testing.T) {
	w := httptest.NewRecorder()
	SetMaxAge(w, time.Hour)
	if got := w.Header().Get("Cache-Control"); got != "private, max-age=3600" {
		t.Fatalf("cache-control=%q", got)
	}

	w = httptest.NewRecorder()
	SetMaxAge(w, 0)
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("cache-control=%q", got)
	}
}
