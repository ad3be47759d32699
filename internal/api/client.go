// Package api implements the client side of the external data store
// contract: register, login, user update and expense CRUD over a JSON
// request/response protocol. The store is a call/fail boundary; there is no
// retry or backoff here, a failed call simply surfaces as an error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"onero/internal/core"
)

// Client talks to one external data store instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Budget   core.Money
	Currency string
}

// NewClient creates a client for the store at baseURL (e.g.
// "http://localhost:4001/api"). timeout bounds every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Register creates a new account and returns the canonical user record.
func (c *Client) Register(ctx context.Context, p RegisterParams) (core.User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPost, "/register", registerPayload{
		Name:     p.Name,
		Email:    p.Email,
		Password: p.Password,
		Budget:   p.Budget.Float(),
		Currency: p.Currency,
	}, &resp)
	if err != nil {
		return core.User{}, err
	}
	return resp.User.toCore()
}

// Login authenticates and returns the stored user record.
func (c *Client) Login(ctx context.Context, email, password string) (core.User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPost, "/login", loginPayload{Email: email, Password: password}, &resp)
	if err != nil {
		return core.User{}, err
	}
	return resp.User.toCore()
}

// UpdateUser merges the provided fields into the stored user.
func (c *Client) UpdateUser(ctx context.Context, userID string, changes UserChanges) (core.User, error) {
	var resp userEnvelope
	err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID), changes, &resp)
	if err != nil {
		return core.User{}, err
	}
	return resp.User.toCore()
}

// GetExpenses returns all stored expenses for the user.
func (c *Client) GetExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	var resp []expensePayload
	if err := c.do(ctx, http.MethodGet, "/expenses/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(resp))
	for _, p := range resp {
		e, err := p.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// CreateExpense persists a draft and returns the canonical record with its
// assigned ID.
func (c *Client) CreateExpense(ctx context.Context, userID string, draft core.Expense) (core.Expense, error) {
	var resp expenseEnvelope
	err := c.do(ctx, http.MethodPost, "/expenses/"+url.PathEscape(userID), expenseToWire(draft), &resp)
	if err != nil {
		return core.Expense{}, err
	}
	return resp.Expense.toCore()
}

// UpdateExpense merges the provided fields into the stored expense.
func (c *Client) UpdateExpense(ctx context.Context, expenseID string, changes ExpenseChanges) (core.Expense, error) {
	var resp expenseEnvelope
	err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(expenseID), changes, &resp)
	if err != nil {
		return core.Expense{}, err
	}
	return resp.Expense.toCore()
}

// DeleteExpense removes the stored expense. Deleting an absent expense is
// not an error.
func (c *Client) DeleteExpense(ctx context.Context, expenseID string) error {
	err := c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(expenseID), nil, nil)
	if err == ErrNotFound {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Status: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.WarnContext(ctx, "Failed to decode store response",
			"method", method, "path", path, "error", err)
		return &TransportError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// readErrorMessage extracts the {"error": ...} body the store sends on
// failure; a plain-text body is passed through as-is.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(raw))
}
