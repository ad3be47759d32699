package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"onero/internal/api"
	"onero/internal/core"
)

var errNoSession = errors.New("not signed in")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFailure maps the error taxonomy onto HTTP statuses: validation 400,
// not-found 404, missing session 401, transport trouble 502.
func writeFailure(w http.ResponseWriter, err error) {
	var ve *api.ValidationError
	var te *api.TransportError
	switch {
	case errors.Is(err, errNoSession):
		writeError(w, http.StatusUnauthorized, errNoSession.Error())
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, api.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &te):
		writeError(w, http.StatusBadGateway, te.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &api.ValidationError{Err: err}
	}
	return nil
}

// expenseForm is a draft submission. Amount arrives as a JSON string or
// number; non-numeric input is a validation failure caught here, before any
// external call.
type expenseForm struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

func (f expenseForm) draft() (core.Expense, error) {
	amount, err := core.ParseMoney(f.Amount.String())
	if err != nil {
		return core.Expense{}, &api.ValidationError{Err: err}
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Expense{}, &api.ValidationError{Err: err}
	}
	return core.Expense{
		Amount:      amount,
		Category:    f.Category,
		Description: f.Description,
		Date:        date,
	}, nil
}
