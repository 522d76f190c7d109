package records

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Field names accepted by the creation forms.
const (
	FieldDate          = "date"
	FieldType          = "type"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldDescription   = "description"
	FieldPeriod        = "period"
	FieldName          = "name"
	FieldTargetAmount  = "targetAmount"
	FieldCurrentAmount = "currentAmount"
	FieldDeadline      = "deadline"
)

type (
	TransactionDraft struct {
		Date        string
		Type        string
		Category    string
		Amount      string
		Description string
	}

	BudgetDraft struct {
		Category string
		Amount   string
		Period   string
	}

	GoalDraft struct {
		Name          string
		TargetAmount  string
		CurrentAmount string
		Deadline      string
	}
)

type (
	Transactions = Store[core.Transaction, TransactionDraft]
	Budgets      = Store[core.Budget, BudgetDraft]
	Goals        = Store[core.SavingsGoal, GoalDraft]
)

// parseNumber coerces a numeric form field. Empty optional fields count as zero.
func parseNumber(field, value string, optional bool) (core.Money, error) {
	if optional && strings.TrimSpace(value) == "" {
		return core.Zero, nil
	}
	m, err := core.ParseMoney(value)
	if err != nil {
		return core.Zero, fmt.Errorf("%w for %s: %q", ErrInvalidNumber, field, value)
	}
	return m, nil
}

// TransactionKind describes ledger entries. A draft without a date is dated
// today according to clock.
func TransactionKind(clock func() time.Time) Kind[core.Transaction, TransactionDraft] {
	return Kind[core.Transaction, TransactionDraft]{
		Name: "transaction",
		NewDraft: func() TransactionDraft {
			return TransactionDraft{Type: string(core.Expense)}
		},
		Fields: []string{FieldDate, FieldType, FieldCategory, FieldAmount, FieldDescription},
		Set: func(d *TransactionDraft, field, value string) error {
			switch field {
			case FieldDate:
				d.Date = value
			case FieldType:
				d.Type = value
			case FieldCategory:
				d.Category = value
			case FieldAmount:
				d.Amount = value
			case FieldDescription:
				d.Description = value
			}
			return nil
		},
		Build: func(id int, d TransactionDraft) (core.Transaction, error) {
			amount, err := parseNumber(FieldAmount, d.Amount, false)
			if err != nil {
				return core.Transaction{}, err
			}
			date := core.DateOf(clock())
			if strings.TrimSpace(d.Date) != "" {
				if date, err = core.ParseDate(d.Date); err != nil {
					return core.Transaction{}, err
				}
			}
			tx := core.Transaction{
				ID:          id,
				Date:        date,
				Type:        core.TransactionType(strings.TrimSpace(d.Type)),
				Category:    strings.TrimSpace(d.Category),
				Amount:      amount,
				Description: strings.TrimSpace(d.Description),
			}
			return tx, tx.Validate()
		},
	}
}

// BudgetKind describes budgets. New budgets start with nothing spent.
func BudgetKind() Kind[core.Budget, BudgetDraft] {
	return Kind[core.Budget, BudgetDraft]{
		Name: "budget",
		NewDraft: func() BudgetDraft {
			return BudgetDraft{Period: string(core.Monthly)}
		},
		Fields: []string{FieldCategory, FieldAmount, FieldPeriod},
		Set: func(d *BudgetDraft, field, value string) error {
			switch field {
			case FieldCategory:
				d.Category = value
			case FieldAmount:
				d.Amount = value
			case FieldPeriod:
				d.Period = value
			}
			return nil
		},
		Build: func(id int, d BudgetDraft) (core.Budget, error) {
			amount, err := parseNumber(FieldAmount, d.Amount, false)
			if err != nil {
				return core.Budget{}, err
			}
			b := core.Budget{
				ID:       id,
				Category: strings.TrimSpace(d.Category),
				Amount:   amount,
				Spent:    core.Zero,
				Period:   core.Period(strings.TrimSpace(d.Period)),
			}
			return b, b.Validate()
		},
	}
}

// GoalKind describes savings goals.
func GoalKind() Kind[core.SavingsGoal, GoalDraft] {
	return Kind[core.SavingsGoal, GoalDraft]{
		Name:     "savings goal",
		NewDraft: func() GoalDraft { return GoalDraft{} },
		Fields:   []string{FieldName, FieldTargetAmount, FieldCurrentAmount, FieldDeadline},
		Set: func(d *GoalDraft, field, value string) error {
			switch field {
			case FieldName:
				d.Name = value
			case FieldTargetAmount:
				d.TargetAmount = value
			case FieldCurrentAmount:
				d.CurrentAmount = value
			case FieldDeadline:
				d.Deadline = value
			}
			return nil
		},
		Build: func(id int, d GoalDraft) (core.SavingsGoal, error) {
			target, err := parseNumber(FieldTargetAmount, d.TargetAmount, false)
			if err != nil {
				return core.SavingsGoal{}, err
			}
			current, err := parseNumber(FieldCurrentAmount, d.CurrentAmount, true)
			if err != nil {
				return core.SavingsGoal{}, err
			}
			deadline, err := core.ParseDate(d.Deadline)
			if err != nil {
				return core.SavingsGoal{}, err
			}
			g := core.SavingsGoal{
				ID:       id,
				Name:     strings.TrimSpace(d.Name),
				Target:   target,
				Current:  current,
				Deadline: deadline,
			}
			return g, g.Validate()
		},
	}
}
