package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		Component: ComponentApp,
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).WithComponent(ComponentAuth)
	logger.Info("login ok", FieldUser, "ann@example.com")

	out := buf.String()
	if !strings.Contains(out, "component=auth") {
		t.Fatalf("missing component in %q", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component should appear once: %q", out)
	}
	if !strings.Contains(out, "user=ann@example.com") {
		t.Fatalf("missing user in %q", out)
	}
}

func TestWithLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).With(FieldRequestID, "req-42")

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("inside")

	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Fatalf("missing request id in %q", buf.String())
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("expected fallback logger")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	ctx := context.Background()

	sl.LogRecordCreated(ctx, "ann@example.com", "budget", 4, "1200.00")
	sl.LogError(ctx, "publish failed", errors.New("boom"), ComponentAMQP, OpPublish, nil)

	r := httptest.NewRequest(http.MethodGet, "/budget", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusNotFound, 3, "192.0.2.1")

	out := buf.String()
	for _, want := range []string{"record_id=4", "record_kind=budget", "error=boom", "level=WARN", "status_code=404"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}
