// Package workspace holds the per-session view state: one record store per
// screen, the settings and the settings choice dialog.
package workspace

import (
	"fmt"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
	"fintrack/internal/seed"
)

// Workspace is the state owned by one authenticated session.
type Workspace struct {
	Owner     string
	CreatedAt time.Time

	Transactions *records.Transactions
	Budgets      *records.Budgets
	Goals        *records.Goals

	mu       sync.Mutex
	settings core.Settings
	choice   string
	alerts   []core.Alert
}

// New creates a workspace seeded with data. Seed slices are copied.
func New(owner string, data *seed.Data, clock func() time.Time) *Workspace {
	if clock == nil {
		clock = time.Now
	}
	return &Workspace{
		Owner:        owner,
		CreatedAt:    clock(),
		Transactions: records.NewStore(records.TransactionKind(clock), data.Transactions...),
		Budgets:      records.NewStore(records.BudgetKind(), data.Budgets...),
		Goals:        records.NewStore(records.GoalKind(), data.Goals...),
		settings:     data.Settings,
	}
}

// Settings returns a snapshot of the current settings.
func (w *Workspace) Settings() core.Settings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.settings
}

// Toggle flips a boolean setting and returns the new snapshot.
func (w *Workspace) Toggle(name string) (core.Settings, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.settings.Toggle(name); err != nil {
		return w.settings, err
	}
	return w.settings, nil
}

// OpenChoice opens the selection dialog for a multi-valued setting.
func (w *Workspace) OpenChoice(name string) error {
	if !core.IsChoice(name) {
		return fmt.Errorf("%w: %q", core.ErrUnknownSetting, name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.choice = name
	return nil
}

// Choose applies value to the open dialog's setting and closes the dialog.
func (w *Workspace) Choose(value string) (core.Settings, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.choice == "" {
		return w.settings, records.ErrNotComposing
	}
	if err := w.settings.Choose(w.choice, value); err != nil {
		return w.settings, err
	}
	w.choice = ""
	return w.settings, nil
}

// CloseChoice closes the dialog without changing anything.
func (w *Workspace) CloseChoice() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.choice = ""
}

// OpenChoiceName returns the setting whose dialog is open, or "".
func (w *Workspace) OpenChoiceName() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.choice
}

// SetAlerts replaces the alerts published by the last scheduler run.
func (w *Workspace) SetAlerts(alerts []core.Alert) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alerts = append([]core.Alert(nil), alerts...)
}

// Alerts returns the alerts published by the last scheduler run.
func (w *Workspace) Alerts() []core.Alert {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]core.Alert(nil), w.alerts...)
}
