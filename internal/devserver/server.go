package devserver

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"onero/internal/log"
)

// Server exposes the expense-store contract over HTTP:
//
//	POST /api/register
//	POST /api/login
//	PUT  /api/users/{id}
//	GET  /api/expenses/{userId}
//	POST /api/expenses/{userId}
//	PUT  /api/expenses/{expenseId}
//	DELETE /api/expenses/{expenseId}
type Server struct {
	storage *Storage
	logger  *log.Logger
}

func NewServer(storage *Storage, logger *log.Logger) *Server {
	return &Server{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentDevServer),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("PUT /api/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("GET /api/expenses/{userId}", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses/{userId}", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{expenseId}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{expenseId}", s.handleDeleteExpense)

	return log.Middleware(s.logger)(mux)
}

type userJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Budget   float64 `json:"budget"`
	Currency string  `json:"currency"`
}

type expenseJSON struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

func userToJSON(u UserRecord) userJSON {
	return userJSON{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Budget:   float64(u.BudgetCents) / 100,
		Currency: u.Currency,
	}
}

func expenseToJSON(e ExpenseRecord) expenseJSON {
	return expenseJSON{
		ID:          e.ID,
		Amount:      float64(e.AmountCents) / 100,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func toCents(amount float64) (int64, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0, false
	}
	return int64(math.Round(amount * 100)), true
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Budget   float64 `json:"budget"`
		Currency string  `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}
	budgetCents, ok := toCents(req.Budget)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid budget")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to hash password", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	u, err := s.storage.CreateUser(r.Context(), UserRecord{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		BudgetCents:  budgetCents,
		Currency:     req.Currency,
	})
	if errors.Is(err, ErrEmailExists) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create user", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.InfoContext(r.Context(), "User registered", log.FieldUserID, u.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"user": userToJSON(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.storage.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to look up user", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.logger.InfoContext(r.Context(), "User logged in", log.FieldUserID, u.ID)
	writeJSON(w, http.StatusOK, map[string]any{"user": userToJSON(u)})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		Name     *string  `json:"name"`
		Email    *string  `json:"email"`
		Budget   *float64 `json:"budget"`
		Currency *string  `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := UserUpdate{Name: req.Name, Email: req.Email, Currency: req.Currency}
	if req.Budget != nil {
		cents, ok := toCents(*req.Budget)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid budget")
			return
		}
		upd.BudgetCents = &cents
	}

	u, err := s.storage.UpdateUser(r.Context(), id, upd)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update user", log.FieldError, err, log.FieldUserID, id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": userToJSON(u)})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	if _, err := s.storage.GetUser(r.Context(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to look up user", log.FieldError, err, log.FieldUserID, userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	records, err := s.storage.ListExpenses(r.Context(), userID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list expenses", log.FieldError, err, log.FieldUserID, userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]expenseJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, expenseToJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	var req struct {
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cents, ok := toCents(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	if !validDate(req.Date) {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	e, err := s.storage.CreateExpense(r.Context(), ExpenseRecord{
		UserID:      userID,
		AmountCents: cents,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
	})
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create expense", log.FieldError, err, log.FieldUserID, userID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.InfoContext(r.Context(), "Expense created",
		log.FieldExpenseID, e.ID,
		log.FieldUserID, userID,
		log.FieldAmountCents, e.AmountCents)
	writeJSON(w, http.StatusCreated, map[string]any{"expense": expenseToJSON(e)})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("expenseId")

	var req struct {
		Amount      *float64 `json:"amount"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
		Date        *string  `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := ExpenseUpdate{Category: req.Category, Description: req.Description}
	if req.Amount != nil {
		cents, ok := toCents(*req.Amount)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		upd.AmountCents = &cents
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}
	if req.Date != nil {
		if !validDate(*req.Date) {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		upd.Date = req.Date
	}

	e, err := s.storage.UpdateExpense(r.Context(), id, upd)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update expense", log.FieldError, err, log.FieldExpenseID, id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"expense": expenseToJSON(e)})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("expenseId")

	err := s.storage.DeleteExpense(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete expense", log.FieldError, err, log.FieldExpenseID, id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
