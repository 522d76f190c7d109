package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Alert is a budget warning or savings reminder produced by the scheduler.
type Alert struct {
	Kind    AlertKind
	Subject string
	Message string
	Tier    Tier
	Percent float64
}

type AlertKind string

const (
	AlertBudget  AlertKind = "budget"
	AlertSavings AlertKind = "savings"
)
