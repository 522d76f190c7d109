package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"fintrack/internal/activity"
	"fintrack/internal/log"
)

// appendTimeout bounds one write to the sink.
const appendTimeout = 5 * time.Second

// ActivityWorker persists activity events consumed from the broker.
type ActivityWorker struct {
	sink   activity.Sink
	logger *log.Logger

	processed atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewActivityWorker(sink activity.Sink, logger *log.Logger) *ActivityWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ActivityWorker{
		sink:   sink,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent stores one event. Events without an id or kind can never be
// stored and are dropped; sink failures are returned so the broker
// redelivers the message.
func (w *ActivityWorker) HandleEvent(ctx context.Context, e activity.Event) error {
	if e.ID == "" || e.Kind == "" {
		w.dropped.Add(1)
		w.logger.WarnContext(ctx, "Dropping malformed activity event",
			"event_id", e.ID,
			log.FieldEventKind, e.Kind)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()

	if err := w.sink.AppendActivity(ctx, e); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("append activity %s: %w", e.ID, err)
	}

	w.processed.Add(1)
	w.logger.DebugContext(ctx, "Activity event stored",
		"event_id", e.ID,
		log.FieldEventKind, e.Kind,
		log.FieldUser, e.Actor)
	return nil
}

// Stats is a snapshot of the worker counters.
type Stats struct {
	Processed int64
	Dropped   int64
	Failed    int64
}

func (w *ActivityWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Dropped:   w.dropped.Load(),
		Failed:    w.failed.Load(),
	}
}

// ReportStats logs the counters every interval until ctx is cancelled.
func (w *ActivityWorker) ReportStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st := w.Stats()
			w.logger.InfoContext(ctx, "Activity worker stats",
				"processed", st.Processed,
				"dropped", st.Dropped,
				"failed", st.Failed)
		}
	}
}
