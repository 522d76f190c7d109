package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"fintrack/internal/activity"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/workspace"
)

type toggleRow struct {
	Name        string
	Label       string
	Description string
	On          bool
}

type settingsView struct {
	Settings   core.Settings
	Toggles    []toggleRow
	Choice     string
	Currencies []core.Currency
	Languages  []core.Language
	Error      string
}

func settingsViewOf(ws *workspace.Workspace, errMsg string) settingsView {
	st := ws.Settings()
	return settingsView{
		Settings: st,
		Toggles: []toggleRow{
			{Name: core.SettingNotifications, Label: "Notifications", Description: "Show alerts on the dashboard", On: st.Notifications},
			{Name: core.SettingDarkMode, Label: "Dark mode", Description: "Use the dark colour scheme", On: st.DarkMode},
			{Name: core.SettingBudgetAlerts, Label: "Budget alerts", Description: "Warn when a budget passes 75%", On: st.BudgetAlerts},
			{Name: core.SettingSavingsReminders, Label: "Savings reminders", Description: "Remind me about goals close to their deadline", On: st.SavingsReminders},
		},
		Choice:     ws.OpenChoiceName(),
		Currencies: core.Currencies,
		Languages:  core.Languages,
		Error:      errMsg,
	}
}

// settingsSection adapts the settings screen to the shared section renderer.
type settingsSection struct{}

func (settingsSection) sectionName() string { return "settings_section" }

func (settingsSection) sectionData(ws *workspace.Workspace, errMsg string) any {
	return settingsViewOf(ws, errMsg)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.renderScreen(w, r, "settings_page", "Settings", settingsViewOf(workspaceFrom(r.Context()), ""))
}

func (s *Server) handleSettingToggle(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	ws := workspaceFrom(r.Context())
	name := sanitizeInput(r.PostForm.Get("name"))

	updated, err := ws.Toggle(name)
	if err != nil {
		s.settingsError(w, r, ws, err)
		return
	}

	s.settingChanged(r, name, settingValue(updated, name))
	s.writeSection(w, r, settingsSection{}, ws, http.StatusOK, "", NewHTMXResponse().TriggerSettingsChanged(name))
}

func (s *Server) handleChoiceOpen(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	ws := workspaceFrom(r.Context())
	if err := ws.OpenChoice(sanitizeInput(r.PostForm.Get("name"))); err != nil {
		s.settingsError(w, r, ws, err)
		return
	}
	s.writeSection(w, r, settingsSection{}, ws, http.StatusOK, "", nil)
}

func (s *Server) handleChoiceChoose(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	ws := workspaceFrom(r.Context())
	name := ws.OpenChoiceName()

	updated, err := ws.Choose(sanitizeInput(r.PostForm.Get("value")))
	if err != nil {
		s.settingsError(w, r, ws, err)
		return
	}

	s.settingChanged(r, name, settingValue(updated, name))
	s.writeSection(w, r, settingsSection{}, ws, http.StatusOK, "", NewHTMXResponse().TriggerSettingsChanged(name))
}

func (s *Server) handleChoiceClose(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	ws.CloseChoice()
	s.writeSection(w, r, settingsSection{}, ws, http.StatusOK, "", nil)
}

// handleExport downloads the session's records as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	recs := export.Records{
		Transactions: ws.Transactions.List(),
		Budgets:      ws.Budgets.List(),
		Goals:        ws.Goals.List(),
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, recs); err != nil {
		s.structured.LogError(r.Context(), "Export failed", err, log.ComponentHTTP, log.OpExport, log.NewFields().WithUser(ws.Owner))
		InternalServerError("Export failed. Please try again.").Write(w)
		return
	}

	total := len(recs.Transactions) + len(recs.Budgets) + len(recs.Goals)
	s.appMetrics.exports.Add(1)
	s.activity.Record(r.Context(), activity.New(activity.KindExport, ws.Owner, fmt.Sprintf("exported %d records", total)))
	log.FromContext(r.Context()).InfoContext(r.Context(), "Records exported",
		log.FieldOperation, log.OpExport,
		"records", total)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(s.clock())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) settingChanged(r *http.Request, name, value string) {
	ws := workspaceFrom(r.Context())
	log.FromContext(r.Context()).InfoContext(r.Context(), "Setting changed",
		log.FieldSetting, name,
		"value", value,
		log.FieldOperation, log.OpToggle)
	s.activity.Record(r.Context(), activity.New(activity.KindSettingChanged, ws.Owner, name+" = "+value))
}

// settingsError maps settings failures to statuses: unknown names are 400,
// a choose without an open dialog is 409 and bad values are 422.
func (s *Server) settingsError(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, err error) {
	status := http.StatusUnprocessableEntity
	msg := err.Error()
	switch {
	case errors.Is(err, core.ErrUnknownSetting):
		status = http.StatusBadRequest
	case errors.Is(err, records.ErrNotComposing):
		status = http.StatusConflict
		msg = "No selection dialog is open."
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "Settings change rejected",
		log.FieldError, err.Error(),
		"error_type", log.ErrorTypeValidation)
	s.writeSection(w, r, settingsSection{}, ws, status, msg, nil)
}

func settingValue(st core.Settings, name string) string {
	switch name {
	case core.SettingNotifications:
		return strconv.FormatBool(st.Notifications)
	case core.SettingDarkMode:
		return strconv.FormatBool(st.DarkMode)
	case core.SettingBudgetAlerts:
		return strconv.FormatBool(st.BudgetAlerts)
	case core.SettingSavingsReminders:
		return strconv.FormatBool(st.SavingsReminders)
	case core.SettingCurrency:
		return string(st.Currency)
	case core.SettingLanguage:
		return string(st.Language)
	default:
		return ""
	}
}
