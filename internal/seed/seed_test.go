package seed

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"fintrack/internal/core"
)

func TestDefault(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if len(d.Transactions) != 1 || len(d.Budgets) != 3 || len(d.Goals) != 2 {
		t.Fatalf("lengths = %d/%d/%d, want 1/3/2", len(d.Transactions), len(d.Budgets), len(d.Goals))
	}
	if tx := d.Transactions[0]; tx.Description != "Weekly groceries" || tx.Amount.String() != "150.00" {
		t.Errorf("transaction = %+v", tx)
	}
	if b := d.Budgets[0]; b.Category != "Groceries" || b.Progress() != 70.0 {
		t.Errorf("budget = %s at %v%%", b.Category, b.Progress())
	}
	if g := d.Goals[0]; g.Name != "New Car" || g.Progress() != 50.0 {
		t.Errorf("goal = %s at %v%%", g.Name, g.Progress())
	}
	if !reflect.DeepEqual(d.Settings, core.DefaultSettings()) {
		t.Errorf("Settings = %+v, want defaults", d.Settings)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":     "transactions: [",
		"bad amount":   "budgets:\n  - {id: 1, category: Rent, amount: abc, period: monthly}\n",
		"exponent":     "budgets:\n  - {id: 1, category: Rent, amount: '1e9', period: monthly}\n",
		"bad period":   "budgets:\n  - {id: 1, category: Rent, amount: '10', period: weekly}\n",
		"bad deadline": "goals:\n  - {id: 1, name: Car, target: '10', deadline: soon}\n",
		"bad currency": "settings:\n  currency: BTC\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Error("Parse() error = nil")
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	raw := "settings:\n  currency: EUR\n  darkMode: true\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(d.Budgets) != 0 {
		t.Errorf("Budgets = %v, want none", d.Budgets)
	}
	if d.Settings.Currency != core.EUR || !d.Settings.DarkMode || !d.Settings.Notifications {
		t.Errorf("Settings = %+v", d.Settings)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
