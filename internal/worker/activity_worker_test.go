package worker

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"fintrack/internal/activity"
	"fintrack/internal/log"
)

type fakeSink struct {
	events []activity.Event
	err    error
}

func (s *fakeSink) AppendActivity(ctx context.Context, e activity.Event) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("append called without a deadline")
	}
	s.events = append(s.events, e)
	return nil
}

func TestActivityWorker_Stores(t *testing.T) {
	sink := &fakeSink{}
	w := NewActivityWorker(sink, log.Discard())

	e := activity.New(activity.KindRecordCreated, "ann@example.com", "budget ₹1,200.00").ForRecord("budget", 4)
	if err := w.HandleEvent(context.Background(), e); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(sink.events) != 1 || !reflect.DeepEqual(sink.events[0], e) {
		t.Errorf("stored events = %+v", sink.events)
	}
	if got := w.Stats(); got != (Stats{Processed: 1}) {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestActivityWorker_DropsMalformed(t *testing.T) {
	sink := &fakeSink{}
	w := NewActivityWorker(sink, log.Discard())

	for _, e := range []activity.Event{{Kind: activity.KindLogin}, {ID: "x"}} {
		if err := w.HandleEvent(context.Background(), e); err != nil {
			t.Errorf("HandleEvent(%+v) error = %v, want it dropped", e, err)
		}
	}

	if len(sink.events) != 0 {
		t.Errorf("malformed events stored: %+v", sink.events)
	}
	if got := w.Stats(); got != (Stats{Dropped: 2}) {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestActivityWorker_SinkFailureRequeues(t *testing.T) {
	sink := &fakeSink{err: errors.New("database is locked")}
	w := NewActivityWorker(sink, log.Discard())

	err := w.HandleEvent(context.Background(), activity.New(activity.KindLogout, "ann@example.com", "logged out"))
	if err == nil || !strings.Contains(err.Error(), "database is locked") {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if got := w.Stats(); got != (Stats{Failed: 1}) {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestActivityWorker_ReportStatsStops(t *testing.T) {
	w := NewActivityWorker(&fakeSink{}, log.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.ReportStats(ctx, time.Millisecond); err != nil {
		t.Errorf("ReportStats() error = %v", err)
	}
}
