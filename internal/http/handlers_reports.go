package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/reports"
)

type categoryShare struct {
	Name   string
	Amount core.Money
	// Share is the category's percentage of all expenses.
	Share float64
}

type reportsView struct {
	Ranges     []reports.Range
	Report     reports.Report
	Categories []categoryShare
}

// buildReport reads the range query parameter and builds the session's report.
func (s *Server) buildReport(r *http.Request) (reports.Report, error) {
	rng, err := reports.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		return reports.Report{}, err
	}
	ws := workspaceFrom(r.Context())
	return reports.Build(ws.Transactions.List(), rng, s.clock()), nil
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	report, err := s.buildReport(r)
	if err != nil {
		BadRequestError("Unknown report range. Choose week, month or year.").Write(w)
		return
	}

	shares := make([]categoryShare, 0, len(report.ByCategory))
	for _, c := range report.ByCategory {
		shares = append(shares, categoryShare{
			Name:   c.Name,
			Amount: c.Amount,
			Share:  core.Percentage(c.Amount, report.Summary.Expenses),
		})
	}

	view := reportsView{Ranges: reports.Ranges, Report: report, Categories: shares}
	if isHTMX(r) {
		s.render(w, r, http.StatusOK, "reports_section", view)
		return
	}
	s.renderScreen(w, r, "reports_page", "Reports", view)
}

type seriesPoint struct {
	Label    string  `json:"label"`
	Start    string  `json:"start"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type reportData struct {
	Range       reports.Range `json:"range"`
	Income      float64       `json:"income"`
	Expenses    float64       `json:"expenses"`
	Net         float64       `json:"net"`
	SavingsRate float64       `json:"savings_rate"`
	Series      []seriesPoint `json:"series"`
}

// handleReportData serves the chart series for the selected range.
func (s *Server) handleReportData(w http.ResponseWriter, r *http.Request) {
	report, err := s.buildReport(r)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	data := reportData{
		Range:       report.Range,
		Income:      report.Summary.Income.Float(),
		Expenses:    report.Summary.Expenses.Float(),
		Net:         report.Summary.Net.Float(),
		SavingsRate: report.Summary.SavingsRate,
		Series:      make([]seriesPoint, 0, len(report.Series)),
	}
	for _, p := range report.Series {
		data.Series = append(data.Series, seriesPoint{
			Label:    p.Label,
			Start:    p.Start.Format(core.DateLayout),
			Income:   p.Income.Float(),
			Expenses: p.Expenses.Float(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(data)
}
