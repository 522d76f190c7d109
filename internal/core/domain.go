package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// DateLayout is the calendar-date layout used by forms, seed data and exports.
const DateLayout = "2006-01-02"

// Categories suggested by the transaction and budget forms.
var Categories = []string{
	"Groceries",
	"Transportation",
	"Entertainment",
	"Bills",
	"Shopping",
	"Healthcare",
	"Other",
}

type (
	TransactionType string

	Period string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          int
		Date        Date
		Type        TransactionType
		Category    string
		Amount      Money
		Description string
	}

	// Budget tracks Spent independently of the ledger; new budgets start at zero.
	Budget struct {
		ID       int
		Category string
		Amount   Money
		Spent    Money
		Period   Period
	}

	// SavingsGoal.Current may exceed Target.
	SavingsGoal struct {
		ID       int
		Name     string
		Target   Money
		Current  Money
		Deadline Date
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty goal name")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (p Period) IsValid() bool {
	return p == Monthly || p == Yearly
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if b.Spent.IsNegative() {
		return ErrInvalidAmount
	}
	if !b.Period.IsValid() {
		return ErrInvalidPeriod
	}
	return nil
}

// Progress is Spent as a percentage of Amount.
func (b Budget) Progress() float64 {
	return Percentage(b.Spent, b.Amount)
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.Target.IsPositive() {
		return ErrInvalidAmount
	}
	if g.Current.IsNegative() {
		return ErrInvalidAmount
	}
	if err := g.Deadline.Validate(); err != nil {
		return err
	}
	return nil
}

// Progress is Current as a percentage of Target, unclamped.
func (g SavingsGoal) Progress() float64 {
	return Percentage(g.Current, g.Target)
}

// Reached reports whether Current has met Target.
func (g SavingsGoal) Reached() bool {
	return g.Current.GreaterThanOrEqual(g.Target.Decimal)
}
