package api

import (
	"fmt"

	"onero/internal/core"
)

// Wire shapes of the external data store contract. Amounts travel as plain
// JSON numbers and dates as YYYY-MM-DD strings; conversion to the cent-based
// domain model happens at this boundary and nowhere else.

type (
	userPayload struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Budget   float64 `json:"budget"`
		Currency string  `json:"currency"`
	}

	expensePayload struct {
		ID          string  `json:"id"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Date        string  `json:"date"`
	}

	userEnvelope struct {
		User userPayload `json:"user"`
	}

	expenseEnvelope struct {
		Expense expensePayload `json:"expense"`
	}

	errorEnvelope struct {
		Error string `json:"error"`
	}

	registerPayload struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Budget   float64 `json:"budget"`
		Currency string  `json:"currency"`
	}

	loginPayload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
)

// UserChanges is a partial user update; nil fields retain prior values.
type UserChanges struct {
	Name     *string  `json:"name,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Budget   *float64 `json:"budget,omitempty"`
	Currency *string  `json:"currency,omitempty"`
}

// ExpenseChanges is a partial expense update; nil fields retain prior values.
type ExpenseChanges struct {
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

func (p userPayload) toCore() (core.User, error) {
	budget, err := core.MoneyFromFloat(p.Budget)
	if err != nil {
		return core.User{}, fmt.Errorf("user %s budget: %w", p.ID, err)
	}
	return core.User{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Budget:   budget,
		Currency: p.Currency,
	}, nil
}

func (p expensePayload) toCore() (core.Expense, error) {
	amount, err := core.MoneyFromFloat(p.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s amount: %w", p.ID, err)
	}
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s date %q: %w", p.ID, p.Date, err)
	}
	return core.Expense{
		ID:          p.ID,
		Amount:      amount,
		Category:    p.Category,
		Description: p.Description,
		Date:        date,
	}, nil
}

func expenseToWire(e core.Expense) expensePayload {
	return expensePayload{
		ID:          e.ID,
		Amount:      e.Amount.Float(),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.Key(),
	}
}
