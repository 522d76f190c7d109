package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/reports"
	"fintrack/internal/services"
)

// recentLimit is how many transactions the dashboard lists.
const recentLimit = 5

type dashboardView struct {
	Summary reports.Summary
	Budgets []core.Budget
	Goals   []core.SavingsGoal
	Recent  []core.Transaction
	Alerts  []core.Alert
	// ShowAlerts is false when notifications are switched off.
	ShowAlerts bool
}

// handleDashboard renders the overview: totals, budget and goal progress,
// the latest transactions and the alerts that hold right now.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	txs := ws.Transactions.List()

	recent := make([]core.Transaction, 0, recentLimit)
	for i := len(txs) - 1; i >= 0 && len(recent) < recentLimit; i-- {
		recent = append(recent, txs[i])
	}

	settings := ws.Settings()
	s.renderScreen(w, r, "dashboard_page", "Dashboard", dashboardView{
		Summary:    reports.Summarize(txs),
		Budgets:    ws.Budgets.List(),
		Goals:      ws.Goals.List(),
		Recent:     recent,
		Alerts:     services.Evaluate(s.alertCheckers, services.SnapshotOf(ws), s.clock()),
		ShowAlerts: settings.Notifications,
	})
}
