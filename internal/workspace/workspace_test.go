package workspace

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/records"
	"fintrack/internal/seed"
)

func defaults(t *testing.T) *seed.Data {
	t.Helper()
	d, err := seed.Default()
	if err != nil {
		t.Fatalf("seed.Default() error = %v", err)
	}
	return d
}

func TestNew_Seeded(t *testing.T) {
	ws := New("ann@example.com", defaults(t), nil)
	if ws.Transactions.Len() != 1 || ws.Budgets.Len() != 3 || ws.Goals.Len() != 2 {
		t.Errorf("seeded lengths = %d/%d/%d, want 1/3/2", ws.Transactions.Len(), ws.Budgets.Len(), ws.Goals.Len())
	}
	if !reflect.DeepEqual(ws.Settings(), core.DefaultSettings()) {
		t.Errorf("Settings() = %+v, want defaults", ws.Settings())
	}
}

func TestWorkspaces_AreIndependent(t *testing.T) {
	data := defaults(t)
	a := New("a@example.com", data, nil)
	b := New("b@example.com", data, nil)

	a.Budgets.Open()
	if _, err := a.Budgets.SubmitWith(map[string]string{
		records.FieldCategory: "Rent",
		records.FieldAmount:   "1200",
	}); err != nil {
		t.Fatalf("SubmitWith() error = %v", err)
	}

	if a.Budgets.Len() != 4 {
		t.Errorf("a has %d budgets, want 4", a.Budgets.Len())
	}
	if b.Budgets.Len() != 3 || len(data.Budgets) != 3 {
		t.Errorf("submit leaked: b=%d seed=%d", b.Budgets.Len(), len(data.Budgets))
	}
}

func TestSettingsDialog(t *testing.T) {
	ws := New("ann@example.com", defaults(t), nil)

	s, err := ws.Toggle(core.SettingDarkMode)
	if err != nil || !s.DarkMode {
		t.Fatalf("Toggle(darkMode) = %+v, %v", s, err)
	}

	if _, err := ws.Choose("EUR"); !errors.Is(err, records.ErrNotComposing) {
		t.Errorf("Choose without dialog err = %v", err)
	}
	if err := ws.OpenChoice(core.SettingDarkMode); !errors.Is(err, core.ErrUnknownSetting) {
		t.Errorf("OpenChoice(darkMode) err = %v", err)
	}

	if err := ws.OpenChoice(core.SettingCurrency); err != nil {
		t.Fatalf("OpenChoice(currency) error = %v", err)
	}
	if ws.OpenChoiceName() != core.SettingCurrency {
		t.Errorf("OpenChoiceName() = %q", ws.OpenChoiceName())
	}

	if _, err := ws.Choose("BTC"); !errors.Is(err, core.ErrInvalidChoice) {
		t.Errorf("Choose(BTC) err = %v", err)
	}
	if ws.OpenChoiceName() != core.SettingCurrency {
		t.Error("invalid choice closed the dialog")
	}

	s, err = ws.Choose("INR")
	if err != nil {
		t.Fatalf("Choose(INR) error = %v", err)
	}
	if s.Currency != core.INR || ws.OpenChoiceName() != "" {
		t.Errorf("after Choose(INR): currency=%s open=%q", s.Currency, ws.OpenChoiceName())
	}

	if err := ws.OpenChoice(core.SettingLanguage); err != nil {
		t.Fatalf("OpenChoice(language) error = %v", err)
	}
	ws.CloseChoice()
	if ws.OpenChoiceName() != "" {
		t.Error("CloseChoice left the dialog open")
	}
	if ws.Settings().Language != core.Language("en") {
		t.Errorf("Language = %q, want en", ws.Settings().Language)
	}
}

func TestAlerts(t *testing.T) {
	ws := New("ann@example.com", defaults(t), nil)
	in := []core.Alert{{Kind: core.AlertBudget, Subject: "Groceries"}}
	ws.SetAlerts(in)
	in[0].Subject = "changed"
	if got := ws.Alerts()[0].Subject; got != "Groceries" {
		t.Errorf("stored alerts aliased the caller's slice: %q", got)
	}
}

func TestRegistry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	r := NewRegistry(defaults(t), 10, time.Hour, clock)

	ws := r.Get("tok-1", "ann@example.com")
	if r.Get("tok-1", "ann@example.com") != ws {
		t.Error("Get() returned a new workspace for a known token")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	seen := 0
	r.Each(func(*Workspace) { seen++ })
	if seen != 1 {
		t.Errorf("Each() visited %d, want 1", seen)
	}

	r.Drop("tok-1")
	if r.Len() != 0 {
		t.Errorf("Len() after Drop = %d, want 0", r.Len())
	}
	if r.Get("tok-1", "ann@example.com") == ws {
		t.Error("dropped workspace came back")
	}

	r.Get("tok-3", "bob@example.com")
	now = now.Add(2 * time.Hour)
	if n := r.Cache().CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
}
