// Package records implements the per-screen record collections and the
// Idle/Composing creation-form state machine they share.
package records

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotComposing  = errors.New("no creation form is open")
	ErrUnknownField  = errors.New("unknown field")
	ErrInvalidNumber = errors.New("invalid number")
)

// State of the creation form.
type State int

const (
	Idle State = iota
	Composing
)

func (s State) String() string {
	if s == Composing {
		return "composing"
	}
	return "idle"
}

// Kind describes one record type: how to start a draft, how to set a
// field on it and how to turn it into a record.
type Kind[R, D any] struct {
	Name     string
	NewDraft func() D
	// Fields lists the names SetField accepts, in form order.
	Fields []string
	Set    func(d *D, field, value string) error
	// Build coerces the draft into a record with the given id.
	Build func(id int, d D) (R, error)
}

func (k Kind[R, D]) hasField(name string) bool {
	for _, f := range k.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Store is an ordered, append-only collection with a single creation form.
// It is safe for concurrent use.
type Store[R, D any] struct {
	mu    sync.Mutex
	kind  Kind[R, D]
	items []R
	state State
	draft D
}

// NewStore creates an empty store in the Idle state.
func NewStore[R, D any](kind Kind[R, D], seed ...R) *Store[R, D] {
	s := &Store[R, D]{kind: kind}
	s.items = append(s.items, seed...)
	return s
}

// Name returns the record kind name.
func (s *Store[R, D]) Name() string {
	return s.kind.Name
}

// Fields returns the settable field names.
func (s *Store[R, D]) Fields() []string {
	return append([]string(nil), s.kind.Fields...)
}

// Open enters Composing with a fresh draft. Opening while already composing
// resets the draft.
func (s *Store[R, D]) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Composing
	s.draft = s.kind.NewDraft()
}

// SetField updates one draft field. No cross-field validation happens here.
func (s *Store[R, D]) SetField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Composing {
		return ErrNotComposing
	}
	if !s.kind.hasField(name) {
		return fmt.Errorf("%s: %w %q", s.kind.Name, ErrUnknownField, name)
	}
	return s.kind.Set(&s.draft, name, value)
}

// Submit builds a record with id = Len()+1, appends it and returns to Idle.
// On a build error the store stays Composing with the draft intact.
func (s *Store[R, D]) Submit() (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked()
}

// SubmitWith applies fields to the draft and submits it under one lock, so
// concurrent form posts never mix their values into one record. Unknown
// names are rejected before any field is applied.
func (s *Store[R, D]) SubmitWith(fields map[string]string) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero R
	if s.state != Composing {
		return zero, ErrNotComposing
	}
	for name := range fields {
		if !s.kind.hasField(name) {
			return zero, fmt.Errorf("%s: %w %q", s.kind.Name, ErrUnknownField, name)
		}
	}
	for _, name := range s.kind.Fields {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := s.kind.Set(&s.draft, name, value); err != nil {
			return zero, err
		}
	}
	return s.submitLocked()
}

func (s *Store[R, D]) submitLocked() (R, error) {
	var zero R
	if s.state != Composing {
		return zero, ErrNotComposing
	}
	rec, err := s.kind.Build(len(s.items)+1, s.draft)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", s.kind.Name, err)
	}
	s.items = append(s.items, rec)
	s.state = Idle
	s.draft = s.kind.NewDraft()
	return rec, nil
}

// Cancel discards the draft and returns to Idle.
func (s *Store[R, D]) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Composing {
		return ErrNotComposing
	}
	s.state = Idle
	s.draft = s.kind.NewDraft()
	return nil
}

// State returns the current form state.
func (s *Store[R, D]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns the draft and whether the form is open.
func (s *Store[R, D]) Draft() (D, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft, s.state == Composing
}

// List returns a copy of the records in insertion order.
func (s *Store[R, D]) List() []R {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]R, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of records.
func (s *Store[R, D]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
