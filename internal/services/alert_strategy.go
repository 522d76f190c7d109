package services

import (
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Snapshot is the part of a workspace the alert checks read.
type Snapshot struct {
	Owner    string
	Settings core.Settings
	Budgets  []core.Budget
	Goals    []core.SavingsGoal
}

// AlertChecker is one alert rule. Each rule decides whether the user's
// settings enable it and which alerts the snapshot raises.
type AlertChecker interface {
	Enabled(s core.Settings) bool
	Check(snap Snapshot, now time.Time) []core.Alert
}

// BudgetAlertChecker raises an alert for every budget in the warning or
// critical tier.
type BudgetAlertChecker struct{}

func (BudgetAlertChecker) Enabled(s core.Settings) bool {
	return s.Notifications && s.BudgetAlerts
}

func (BudgetAlertChecker) Check(snap Snapshot, _ time.Time) []core.Alert {
	var alerts []core.Alert
	for _, b := range snap.Budgets {
		pct := b.Progress()
		tier := core.TierOf(pct)
		if tier == core.TierNormal {
			continue
		}
		alerts = append(alerts, core.Alert{
			Kind:    core.AlertBudget,
			Subject: b.Category,
			Message: budgetMessage(b.Category, pct, tier),
			Tier:    tier,
			Percent: pct,
		})
	}
	return alerts
}

func budgetMessage(category string, pct float64, tier core.Tier) string {
	n, ok := core.RoundPercent(pct)
	if !ok {
		return fmt.Sprintf("%s budget has spending but no amount set", category)
	}
	if tier == core.TierCritical {
		return fmt.Sprintf("%s budget is %d%% used", category, n)
	}
	return fmt.Sprintf("%s budget is at %d%%, approaching its limit", category, n)
}

// SavingsReminderChecker reminds about unfinished goals whose deadline falls
// within Window, and about overdue ones.
type SavingsReminderChecker struct {
	Window time.Duration
}

func (SavingsReminderChecker) Enabled(s core.Settings) bool {
	return s.Notifications && s.SavingsReminders
}

func (c SavingsReminderChecker) Check(snap Snapshot, now time.Time) []core.Alert {
	today := core.DateOf(now)
	horizon := today.Add(c.Window)

	var alerts []core.Alert
	for _, g := range snap.Goals {
		if g.Reached() || g.Deadline.After(horizon) {
			continue
		}
		pct := g.Progress()
		n, _ := core.RoundPercent(pct)

		tier := core.TierWarning
		msg := fmt.Sprintf("%s is due %s and %d%% funded", g.Name, g.Deadline, n)
		if g.Deadline.Before(today.Time) {
			tier = core.TierCritical
			msg = fmt.Sprintf("%s passed its %s deadline at %d%% funded", g.Name, g.Deadline, n)
		}
		alerts = append(alerts, core.Alert{
			Kind:    core.AlertSavings,
			Subject: g.Name,
			Message: msg,
			Tier:    tier,
			Percent: pct,
		})
	}
	return alerts
}

// DefaultReminderWindow is how far ahead savings reminders look by default.
const DefaultReminderWindow = 30 * 24 * time.Hour

// DefaultCheckers returns the built-in alert rules.
func DefaultCheckers(reminderWindow time.Duration) []AlertChecker {
	return []AlertChecker{
		BudgetAlertChecker{},
		SavingsReminderChecker{Window: reminderWindow},
	}
}

// Evaluate runs every enabled checker against snap.
func Evaluate(checkers []AlertChecker, snap Snapshot, now time.Time) []core.Alert {
	var alerts []core.Alert
	for _, c := range checkers {
		if !c.Enabled(snap.Settings) {
			continue
		}
		alerts = append(alerts, c.Check(snap, now)...)
	}
	return alerts
}
