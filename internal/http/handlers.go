package http

import (
	"encoding/json"
	"net/http"
	"time"

	"onero/internal/api"
	"onero/internal/core"
	"onero/internal/log"
	"onero/internal/session"
	"onero/internal/views"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"requests":  s.tracer.GetMetrics().TotalRequests,
	})
}

type userJSON struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Budget   core.Money `json:"budget"`
	Currency string     `json:"currency"`
}

type expenseJSON struct {
	ID          string     `json:"id"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
}

func userView(u core.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Budget: u.Budget, Currency: u.Currency}
}

func expenseViews(expenses []core.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseJSON{
			ID:          e.ID,
			Amount:      e.Amount,
			Category:    e.Category,
			Description: e.Description,
			Date:        e.Date,
		})
	}
	return out
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Budget   json.Number `json:"budget"`
		Currency string      `json:"currency"`
	}
	if err := decodeBody(r, &form); err != nil {
		writeFailure(w, err)
		return
	}
	budget := core.Money{}
	if form.Budget != "" {
		parsed, err := core.ParseMoney(form.Budget.String())
		if err != nil {
			writeFailure(w, &api.ValidationError{Err: err})
			return
		}
		budget = parsed
	}

	sess, err := session.Register(r.Context(), s.client, s.logger, api.RegisterParams{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Budget:   budget,
		Currency: form.Currency,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.setSession(sess)
	writeJSON(w, http.StatusCreated, map[string]any{"user": userView(sess.User())})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &form); err != nil {
		writeFailure(w, err)
		return
	}

	sess, err := session.Login(r.Context(), s.client, s.logger, form.Email, form.Password)
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.setSession(sess)
	writeJSON(w, http.StatusOK, map[string]any{"user": userView(sess.User())})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setSession(nil)
	s.logger.WithComponent(log.ComponentSession).InfoContext(r.Context(), "Session ended",
		log.FieldOperation, log.OpLogout)
	writeJSON(w, http.StatusOK, map[string]any{"profile": core.DefaultProfile()})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": expenseViews(sess.Expenses.All()),
		"inFlight": sess.Expenses.InFlight(),
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	var form expenseForm
	if err := decodeBody(r, &form); err != nil {
		writeFailure(w, err)
		return
	}
	draft, err := form.draft()
	if err != nil {
		writeFailure(w, err)
		return
	}
	created, err := sess.Expenses.Add(r.Context(), draft)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"expense": expenseViews([]core.Expense{created})[0]})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	var form struct {
		Amount      *json.Number `json:"amount"`
		Category    *string      `json:"category"`
		Description *string      `json:"description"`
		Date        *string      `json:"date"`
	}
	if err := decodeBody(r, &form); err != nil {
		writeFailure(w, err)
		return
	}

	changes := api.ExpenseChanges{
		Category:    form.Category,
		Description: form.Description,
		Date:        form.Date,
	}
	if form.Amount != nil {
		amount, err := core.ParseMoney(form.Amount.String())
		if err != nil {
			writeFailure(w, &api.ValidationError{Err: err})
			return
		}
		f := amount.Float()
		changes.Amount = &f
	}
	if form.Date != nil {
		if _, err := core.ParseDate(*form.Date); err != nil {
			writeFailure(w, &api.ValidationError{Err: err})
			return
		}
	}

	updated, err := sess.Expenses.Update(r.Context(), r.PathValue("id"), changes)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expense": expenseViews([]core.Expense{updated})[0]})
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	if err := sess.Expenses.Remove(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) handleReloadExpenses(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	if err := sess.Expenses.Load(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": expenseViews(sess.Expenses.All()),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		// signed out: defaults, nothing user-specific
		writeJSON(w, http.StatusOK, map[string]any{
			"profile":       core.DefaultProfile(),
			"authenticated": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":       sess.Profile.Profile(),
		"user":          userView(sess.User()),
		"authenticated": true,
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	var form struct {
		Name     *string      `json:"name"`
		Email    *string      `json:"email"`
		Budget   *json.Number `json:"budget"`
		Currency *string      `json:"currency"`
	}
	if err := decodeBody(r, &form); err != nil {
		writeFailure(w, err)
		return
	}

	changes := api.UserChanges{Name: form.Name, Email: form.Email, Currency: form.Currency}
	if form.Budget != nil {
		budget, err := core.ParseMoney(form.Budget.String())
		if err != nil {
			writeFailure(w, &api.ValidationError{Err: err})
			return
		}
		f := budget.Float()
		changes.Budget = &f
	}

	profile, err := sess.Profile.Update(r.Context(), changes)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile, "user": userView(sess.User())})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	expenses := sess.Expenses.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": views.Dashboard(expenses, sess.Profile.Profile(), s.now()),
		"pie":     views.Pie(expenses),
		"bars":    views.Bars(expenses),
		"recent":  expenseViews(views.Recent(expenses, 5)),
	})
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	filter := core.ReportFilter{
		Period:   core.Period(r.URL.Query().Get("period")),
		Category: r.URL.Query().Get("category"),
	}
	if filter.Period == "" {
		filter.Period = core.PeriodCurrentMonth
	}
	expenses := sess.Expenses.All()
	report := views.BuildReport(expenses, filter, s.now())
	writeJSON(w, http.StatusOK, map[string]any{
		"report": report,
		"line":   views.TrendLine(filter.Apply(expenses, s.now())),
	})
}

// handleImportCSV accepts a previously exported CSV body and adds each record
// through the expense store, so every row goes through the usual validation
// and external persistence. Rows are imported oldest-exported-first; a failed
// row stops the import and reports how far it got.
func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	drafts, err := core.ImportCSV(r.Body)
	if err != nil {
		writeFailure(w, &api.ValidationError{Err: err})
		return
	}

	imported := 0
	for _, draft := range drafts {
		if _, err := sess.Expenses.Add(r.Context(), draft); err != nil {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"imported": imported,
				"error":    err.Error(),
			})
			return
		}
		imported++
	}

	s.logger.WithComponent(log.ComponentExport).InfoContext(r.Context(), "Expenses imported",
		log.FieldOperation, log.OpImport,
		log.FieldUserID, sess.User().ID,
		log.FieldCount, imported)
	writeJSON(w, http.StatusCreated, map[string]any{"imported": imported})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession()
	if sess == nil {
		writeFailure(w, errNoSession)
		return
	}
	text, err := core.ExportCSV(sess.Expenses.All())
	if err != nil {
		writeFailure(w, err)
		return
	}
	s.logger.WithComponent(log.ComponentExport).InfoContext(r.Context(), "Expenses exported",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, sess.User().ID)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}
