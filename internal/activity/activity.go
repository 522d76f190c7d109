// Package activity defines the audit events emitted by the web server and
// persisted by the worker.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an event.
type Kind string

const (
	KindRecordCreated  Kind = "record.created"
	KindLogin          Kind = "auth.login"
	KindLogout         Kind = "auth.logout"
	KindRegister       Kind = "auth.register"
	KindSettingChanged Kind = "settings.changed"
	KindExport         Kind = "settings.export"
	KindAlert          Kind = "alert.raised"
)

// Event is one audit entry.
type Event struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Actor      string    `json:"actor"`
	Record     string    `json:"record,omitempty"`
	RecordID   int       `json:"record_id,omitempty"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New creates an event with a fresh id stamped now.
func New(kind Kind, actor, summary string) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		Actor:      actor,
		Summary:    summary,
		OccurredAt: time.Now().UTC(),
	}
}

// ForRecord attaches the record kind and id.
func (e Event) ForRecord(kind string, id int) Event {
	e.Record = kind
	e.RecordID = id
	return e
}

// Publisher ships events to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Sink persists consumed events.
type Sink interface {
	AppendActivity(ctx context.Context, e Event) error
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// SinkPublisher writes events straight to a Sink, for single-process
// deployments with a database but no broker.
type SinkPublisher struct {
	Sink Sink
}

func (p SinkPublisher) Publish(ctx context.Context, e Event) error {
	return p.Sink.AppendActivity(ctx, e)
}

func (SinkPublisher) Close() error { return nil }
