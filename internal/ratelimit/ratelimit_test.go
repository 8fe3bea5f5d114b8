package ratelimit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/httpmw"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestLimiter_BurstThenReject(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 3)
	l.now = func() time.Time { return now }

	for i := range 3 {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d rejected inside burst", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("request past burst allowed")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("other key rejected")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.2.3.4") {
		t.Error("token not refilled after 1s")
	}
}

func TestLimiter_Evict(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("old")
	now = now.Add(5 * time.Minute)
	l.Allow("new")

	if n := l.Evict(3 * time.Minute); n != 1 {
		t.Errorf("Evict = %d, want 1", n)
	}
	if _, ok := l.clients["new"]; !ok {
		t.Error("recent key evicted")
	}
}

func TestLimiter_RunEvictorStops(t *testing.T) {
	t.Parallel()

	l := New(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunEvictor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("evictor did not stop")
	}
}

func TestRemoteIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		want string
	}{
		{"10.0.0.1:5555", "10.0.0.1"},
		{"[::1]:80", "::1"},
		{"no-port", "no-port"},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		r.RemoteAddr = tt.addr
		if got := RemoteIP(r); got != tt.want {
			t.Errorf("RemoteIP(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	l := New(0.001, 2)
	h := l.Middleware(nil)(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", http.NoBody)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("429 without Retry-After")
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("codes = %v, want %v", codes, want)
			break
		}
	}
}

func TestMiddleware_RejectionIsJSON(t *testing.T) {
	t.Parallel()

	h := New(0.001, 1).Middleware(nil)(okHandler)

	var rec *httptest.ResponseRecorder
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", http.NoBody)
		req.RemoteAddr = "192.0.2.1:1234"
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d, want 429", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != "too many requests" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestMiddleware_KeysOnForwardedClient(t *testing.T) {
	t.Parallel()

	l := New(1, 1)
	h := httpmw.ClientIPWithOptions(httpmw.ClientIPOptions{TrustedHops: 1})(l.Middleware(nil)(okHandler))

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", http.NoBody)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("203.0.113.7"); code != http.StatusOK {
		t.Fatalf("first client = %d, want 200", code)
	}
	if code := send("198.51.100.9"); code != http.StatusOK {
		t.Errorf("second client behind the same proxy = %d, want 200", code)
	}
	if code := send("203.0.113.7"); code != http.StatusTooManyRequests {
		t.Errorf("first client again = %d, want 429", code)
	}
}

func TestClientIP_FallsBackToRemoteAddr(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "192.0.2.44:9999"
	if got := ClientIP(req); got != "192.0.2.44" {
		t.Errorf("ClientIP without middleware = %q, want 192.0.2.44", got)
	}

	req = req.WithContext(httpmw.WithClientIP(req.Context(), "203.0.113.7"))
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP with context = %q, want 203.0.113.7", got)
	}
}
