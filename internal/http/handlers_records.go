package http

import (
	"errors"
	"fmt"
	"net/http"

	"fintrack/internal/activity"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/workspace"
)

// recordScreen binds one record store of the workspace to a page and its
// creation form endpoints.
type recordScreen[R, D any] struct {
	path    string
	title   string
	page    string
	section string
	store   func(ws *workspace.Workspace) *records.Store[R, D]
	view    func(ws *workspace.Workspace, form formState[D]) any
	// describe returns the id and headline amount logged for a new record.
	describe func(rec R) (int, core.Money)
}

// formState is the creation form as the templates see it.
type formState[D any] struct {
	Composing bool
	Draft     D
	Error     string
}

func currentForm[R, D any](st *records.Store[R, D], errMsg string) formState[D] {
	d, open := st.Draft()
	return formState[D]{Composing: open, Draft: d, Error: errMsg}
}

// registerRecordScreen mounts GET <path> and POST <path>/form/{open,field,submit,cancel}.
func registerRecordScreen[R, D any](mux *http.ServeMux, s *Server, sc recordScreen[R, D]) {
	mux.Handle("GET "+sc.path, s.guard(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		s.renderScreen(w, r, sc.page, sc.title, sc.view(ws, currentForm(sc.store(ws), "")))
	}))
	mux.Handle("POST "+sc.path+"/form/open", s.guard(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		st := sc.store(ws)
		st.Open()
		log.FromContext(r.Context()).DebugContext(r.Context(), "Creation form opened",
			log.FieldRecordKind, st.Name(),
			log.FieldOperation, log.OpOpen)
		s.writeSection(w, r, sc, ws, http.StatusOK, "", nil)
	}))
	mux.Handle("POST "+sc.path+"/form/field", s.guard(func(w http.ResponseWriter, r *http.Request) {
		serveSetField(s, sc, w, r)
	}))
	mux.Handle("POST "+sc.path+"/form/submit", s.guard(func(w http.ResponseWriter, r *http.Request) {
		serveSubmit(s, sc, w, r)
	}))
	mux.Handle("POST "+sc.path+"/form/cancel", s.guard(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		st := sc.store(ws)
		if err := st.Cancel(); err != nil {
			s.formError(w, r, sc, ws, err)
			return
		}
		log.FromContext(r.Context()).DebugContext(r.Context(), "Creation form cancelled",
			log.FieldRecordKind, st.Name(),
			log.FieldOperation, log.OpCancel)
		s.writeSection(w, r, sc, ws, http.StatusOK, "", NewHTMXResponse().TriggerFormClosed(st.Name()))
	}))
}

// serveSetField updates draft fields. The body either names the field
// explicitly (field, value) or carries form inputs named after the fields.
// Goals have a field called "name", so the explicit key is "field".
func serveSetField[R, D any](s *Server, sc recordScreen[R, D], w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	st := sc.store(ws)

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	if parser.Has("field") {
		if err := st.SetField(parser.Get("field"), parser.Get("value")); err != nil {
			s.formError(w, r, sc, ws, err)
			return
		}
	} else {
		for _, f := range st.Fields() {
			if !parser.Has(f) {
				continue
			}
			if err := st.SetField(f, parser.Get(f)); err != nil {
				s.formError(w, r, sc, ws, err)
				return
			}
		}
	}

	log.FromContext(r.Context()).DebugContext(r.Context(), "Draft updated",
		log.FieldRecordKind, st.Name(),
		log.FieldOperation, log.OpSetField)
	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
}

// serveSubmit applies any posted fields, then submits the draft.
func serveSubmit[R, D any](s *Server, sc recordScreen[R, D], w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	st := sc.store(ws)

	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	fields := make(map[string]string)
	for _, f := range st.Fields() {
		if r.PostForm.Has(f) {
			fields[f] = sanitizeInput(r.PostForm.Get(f))
		}
	}

	rec, err := st.SubmitWith(fields)
	if err != nil {
		s.formError(w, r, sc, ws, err)
		return
	}

	id, amount := sc.describe(rec)
	actor := identityFrom(r.Context()).Email
	s.appMetrics.recordsCreated.Add(1)
	s.structured.LogRecordCreated(r.Context(), actor, st.Name(), id, amount.String())
	s.activity.Record(r.Context(),
		activity.New(activity.KindRecordCreated, actor, fmt.Sprintf("%s %s", st.Name(), s.formatter.Format(amount))).
			ForRecord(st.Name(), id))

	s.writeSection(w, r, sc, ws, http.StatusOK, "", NewHTMXResponse().
		TriggerRecordCreated(st.Name(), id).
		TriggerSuccessNotification(fmt.Sprintf("%s #%d added", st.Name(), id)))
}

// formError re-renders the section with the error shown on the form.
// Validation problems are 422, a form that is not open is 409.
func (s *Server) formError(w http.ResponseWriter, r *http.Request, sc sectionWriter, ws *workspace.Workspace, err error) {
	status := http.StatusUnprocessableEntity
	msg := err.Error()
	switch {
	case errors.Is(err, records.ErrNotComposing):
		status = http.StatusConflict
		msg = "The form is no longer open. Open it again to add a record."
	case errors.Is(err, records.ErrUnknownField):
		status = http.StatusBadRequest
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "Form action rejected",
		log.FieldPath, r.URL.Path,
		log.FieldError, err.Error(),
		"error_type", log.ErrorTypeValidation)
	s.writeSection(w, r, sc, ws, status, msg, nil)
}

// sectionWriter lets the non-generic error path render any record screen.
type sectionWriter interface {
	sectionName() string
	sectionData(ws *workspace.Workspace, errMsg string) any
}

func (sc recordScreen[R, D]) sectionName() string { return sc.section }

func (sc recordScreen[R, D]) sectionData(ws *workspace.Workspace, errMsg string) any {
	return sc.view(ws, currentForm(sc.store(ws), errMsg))
}

// writeSection renders the screen's section partial, with extra triggers
// from resp when given.
func (s *Server) writeSection(w http.ResponseWriter, r *http.Request, sc sectionWriter, ws *workspace.Workspace, status int, errMsg string, resp *HTMXResponseBuilder) {
	html, err := s.fragment(sc.sectionName(), sc.sectionData(ws, errMsg))
	if err != nil {
		s.structured.LogError(r.Context(), "Section render failed", err, log.ComponentTemplate, log.OpRender, nil)
		InternalServerError("Something went wrong while rendering this page").Write(w)
		return
	}
	if resp == nil {
		resp = NewHTMXResponse()
	}
	resp.Status(status).BodyHTML(html).Write(w)
}

type transactionsView struct {
	Items      []core.Transaction
	Form       formState[records.TransactionDraft]
	Categories []string
	Income     core.Money
	Expenses   core.Money
}

func transactionScreen() recordScreen[core.Transaction, records.TransactionDraft] {
	return recordScreen[core.Transaction, records.TransactionDraft]{
		path:    "/transactions",
		title:   "Transactions",
		page:    "transactions_page",
		section: "transactions_section",
		store:   func(ws *workspace.Workspace) *records.Transactions { return ws.Transactions },
		view: func(ws *workspace.Workspace, form formState[records.TransactionDraft]) any {
			v := transactionsView{
				Items:      ws.Transactions.List(),
				Form:       form,
				Categories: core.Categories,
				Income:     core.Zero,
				Expenses:   core.Zero,
			}
			for _, t := range v.Items {
				if t.Type == core.Income {
					v.Income = v.Income.Add(t.Amount)
				} else {
					v.Expenses = v.Expenses.Add(t.Amount)
				}
			}
			return v
		},
		describe: func(t core.Transaction) (int, core.Money) { return t.ID, t.Amount },
	}
}

type budgetView struct {
	Items      []core.Budget
	Form       formState[records.BudgetDraft]
	Categories []string
	Total      core.Money
	Spent      core.Money
	Overall    float64
}

func budgetScreen() recordScreen[core.Budget, records.BudgetDraft] {
	return recordScreen[core.Budget, records.BudgetDraft]{
		path:    "/budget",
		title:   "Budgets",
		page:    "budget_page",
		section: "budget_section",
		store:   func(ws *workspace.Workspace) *records.Budgets { return ws.Budgets },
		view: func(ws *workspace.Workspace, form formState[records.BudgetDraft]) any {
			v := budgetView{
				Items:      ws.Budgets.List(),
				Form:       form,
				Categories: core.Categories,
				Total:      core.Zero,
				Spent:      core.Zero,
			}
			for _, b := range v.Items {
				v.Total = v.Total.Add(b.Amount)
				v.Spent = v.Spent.Add(b.Spent)
			}
			v.Overall = core.Percentage(v.Spent, v.Total)
			return v
		},
		describe: func(b core.Budget) (int, core.Money) { return b.ID, b.Amount },
	}
}

type savingsView struct {
	Items  []core.SavingsGoal
	Form   formState[records.GoalDraft]
	Target core.Money
	Saved  core.Money
}

func savingsScreen() recordScreen[core.SavingsGoal, records.GoalDraft] {
	return recordScreen[core.SavingsGoal, records.GoalDraft]{
		path:    "/savings",
		title:   "Savings Goals",
		page:    "savings_page",
		section: "savings_section",
		store:   func(ws *workspace.Workspace) *records.Goals { return ws.Goals },
		view: func(ws *workspace.Workspace, form formState[records.GoalDraft]) any {
			v := savingsView{
				Items:  ws.Goals.List(),
				Form:   form,
				Target: core.Zero,
				Saved:  core.Zero,
			}
			for _, g := range v.Items {
				v.Target = v.Target.Add(g.Target)
				v.Saved = v.Saved.Add(g.Current)
			}
			return v
		},
		describe: func(g core.SavingsGoal) (int, core.Money) { return g.ID, g.Target },
	}
}
