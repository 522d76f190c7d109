// Package reporting sends unexpected errors to Sentry. Until Init succeeds
// with a DSN, Capture is a no-op.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"fintrack/internal/log"
)

const flushTimeout = 2 * time.Second

// Options configures the Sentry client.
type Options struct {
	DSN         string
	Environment string
	Release     string
}

// Init configures the global Sentry hub. An empty DSN disables reporting.
// The returned func flushes buffered events and must run before exit.
func Init(opts Options) (func(), error) {
	if opts.DSN == "" {
		return func() {}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		Release:     opts.Release,
		SampleRate:  1.0,
		BeforeSend:  scrub,
	})
	if err != nil {
		return func() {}, fmt.Errorf("init sentry: %w", err)
	}
	return func() { sentry.Flush(flushTimeout) }, nil
}

// scrub drops cookies and the session header so tokens never leave the process.
func scrub(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Cookies = ""
		delete(event.Request.Headers, "Cookie")
	}
	return event
}

// Capture reports err with fields attached as tags. Safe to call before Init.
func Capture(ctx context.Context, err error, fields log.LogFields) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range fields {
			if k == log.FieldError {
				continue
			}
			scope.SetTag(k, fmt.Sprint(v))
		}
		if user, ok := fields[log.FieldUser].(string); ok {
			scope.SetUser(sentry.User{Email: user})
		}
		hub.CaptureException(err)
	})
}
