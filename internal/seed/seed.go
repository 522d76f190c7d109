// Package seed loads the sample records and default settings that a new
// session starts with.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"fintrack/internal/core"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type transactionRow struct {
	ID          int    `yaml:"id"`
	Date        string `yaml:"date"`
	Type        string `yaml:"type"`
	Category    string `yaml:"category"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
}

type budgetRow struct {
	ID       int    `yaml:"id"`
	Category string `yaml:"category"`
	Amount   string `yaml:"amount"`
	Spent    string `yaml:"spent"`
	Period   string `yaml:"period"`
}

type goalRow struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Target   string `yaml:"target"`
	Current  string `yaml:"current"`
	Deadline string `yaml:"deadline"`
}

type settingsRow struct {
	Notifications    *bool  `yaml:"notifications"`
	DarkMode         *bool  `yaml:"darkMode"`
	Currency         string `yaml:"currency"`
	Language         string `yaml:"language"`
	BudgetAlerts     *bool  `yaml:"budgetAlerts"`
	SavingsReminders *bool  `yaml:"savingsReminders"`
}

type file struct {
	Transactions []transactionRow `yaml:"transactions"`
	Budgets      []budgetRow      `yaml:"budgets"`
	Goals        []goalRow        `yaml:"goals"`
	Settings     settingsRow      `yaml:"settings"`
}

// Data is validated seed content. Slices are shared; callers copy before
// mutating.
type Data struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Goals        []core.SavingsGoal
	Settings     core.Settings
}

// Default returns the embedded sample data.
func Default() (*Data, error) {
	return Parse(defaultsYAML)
}

// Load reads seed data from path, or the embedded defaults when path is empty.
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates YAML seed content.
func Parse(raw []byte) (*Data, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	d := &Data{Settings: f.Settings.apply(core.DefaultSettings())}
	if !d.Settings.Currency.IsValid() {
		return nil, fmt.Errorf("seed settings: unsupported currency %q", d.Settings.Currency)
	}
	if !d.Settings.Language.IsValid() {
		return nil, fmt.Errorf("seed settings: unsupported language %q", d.Settings.Language)
	}

	for i, row := range f.Transactions {
		tx, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", i+1, err)
		}
		d.Transactions = append(d.Transactions, tx)
	}
	for i, row := range f.Budgets {
		b, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("seed budget %d: %w", i+1, err)
		}
		d.Budgets = append(d.Budgets, b)
	}
	for i, row := range f.Goals {
		g, err := row.record()
		if err != nil {
			return nil, fmt.Errorf("seed goal %d: %w", i+1, err)
		}
		d.Goals = append(d.Goals, g)
	}
	return d, nil
}

func (r transactionRow) record() (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseMoney(r.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		ID:          r.ID,
		Date:        date,
		Type:        core.TransactionType(r.Type),
		Category:    r.Category,
		Amount:      amount,
		Description: r.Description,
	}
	return tx, tx.Validate()
}

func (r budgetRow) record() (core.Budget, error) {
	amount, err := core.ParseMoney(r.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	spent := core.Zero
	if r.Spent != "" {
		if spent, err = core.ParseMoney(r.Spent); err != nil {
			return core.Budget{}, err
		}
	}
	b := core.Budget{ID: r.ID, Category: r.Category, Amount: amount, Spent: spent, Period: core.Period(r.Period)}
	return b, b.Validate()
}

func (r goalRow) record() (core.SavingsGoal, error) {
	target, err := core.ParseMoney(r.Target)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	current := core.Zero
	if r.Current != "" {
		if current, err = core.ParseMoney(r.Current); err != nil {
			return core.SavingsGoal{}, err
		}
	}
	deadline, err := core.ParseDate(r.Deadline)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	g := core.SavingsGoal{ID: r.ID, Name: r.Name, Target: target, Current: current, Deadline: deadline}
	return g, g.Validate()
}

func (s settingsRow) apply(base core.Settings) core.Settings {
	if s.Notifications != nil {
		base.Notifications = *s.Notifications
	}
	if s.DarkMode != nil {
		base.DarkMode = *s.DarkMode
	}
	if s.Currency != "" {
		base.Currency = core.Currency(s.Currency)
	}
	if s.Language != "" {
		base.Language = core.Language(s.Language)
	}
	if s.BudgetAlerts != nil {
		base.BudgetAlerts = *s.BudgetAlerts
	}
	if s.SavingsReminders != nil {
		base.SavingsReminders = *s.SavingsReminders
	}
	return base
}
