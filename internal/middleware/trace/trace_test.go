package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/log"
)

func TestMiddleware_RequestID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)

	var seen string
	var logger *log.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		logger = log.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Errorf("request id = %q, want req_ prefix", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(RequestIDHeader), seen)
	}
	if logger == nil || logger.Component() != log.ComponentTrace {
		t.Errorf("request logger not attached to context")
	}

	// A well-formed incoming id is propagated.
	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "upstream-123")
	h.ServeHTTP(rec, r)
	if seen != "upstream-123" {
		t.Errorf("request id = %q, want upstream-123", seen)
	}

	// A malformed one is replaced.
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "has spaces in it")
	h.ServeHTTP(httptest.NewRecorder(), r)
	if seen == "has spaces in it" {
		t.Error("malformed request id was propagated")
	}
}

func TestMiddleware_Metrics(t *testing.T) {
	m := NewMiddleware(log.Discard(), func(*http.Request) string { return "127.0.0.1" })

	statuses := []int{http.StatusOK, http.StatusSeeOther, http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusInternalServerError}
	for _, code := range statuses {
		code := code
		h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 5 {
		t.Errorf("TotalRequests = %d, want 5", got.TotalRequests)
	}
	if got.ClientErrors != 2 {
		t.Errorf("ClientErrors = %d, want 2", got.ClientErrors)
	}
	if got.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", got.ServerErrors)
	}
	if got.InFlight != 0 {
		t.Errorf("InFlight = %d, want 0", got.InFlight)
	}
}
