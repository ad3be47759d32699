// Package devserver is a local, SQLite-backed stand-in for the hosted
// expense store. It serves the same HTTP contract the client speaks so the
// application can run end to end without a remote backend.
package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("email already registered")
)

// UserRecord is a stored user row, password hash included.
type UserRecord struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	BudgetCents  int64
	Currency     string
}

// ExpenseRecord is a stored expense row. Date is an ISO day string.
type ExpenseRecord struct {
	ID          string
	UserID      string
	AmountCents int64
	Category    string
	Description string
	Date        string
}

type Storage struct {
	db *sql.DB
}

func NewStorage(dbPath string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) CreateUser(ctx context.Context, u UserRecord) (UserRecord, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, u.Email).Scan(&exists)
	if err != nil {
		return UserRecord{}, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return UserRecord{}, ErrEmailExists
	}

	u.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, budget_cents, currency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.BudgetCents, u.Currency)
	if err != nil {
		return UserRecord{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (UserRecord, error) {
	var u UserRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, budget_cents, currency
		 FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.BudgetCents, &u.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, ErrNotFound
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (UserRecord, error) {
	var u UserRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, budget_cents, currency
		 FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.BudgetCents, &u.Currency)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, ErrNotFound
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UserUpdate carries the fields of an update request. Nil means unchanged.
type UserUpdate struct {
	Name        *string
	Email       *string
	BudgetCents *int64
	Currency    *string
}

func (s *Storage) UpdateUser(ctx context.Context, id string, upd UserUpdate) (UserRecord, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return UserRecord{}, err
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.BudgetCents != nil {
		u.BudgetCents = *upd.BudgetCents
	}
	if upd.Currency != nil {
		u.Currency = *upd.Currency
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, budget_cents = ?, currency = ? WHERE id = ?`,
		u.Name, u.Email, u.BudgetCents, u.Currency, u.ID)
	if err != nil {
		return UserRecord{}, fmt.Errorf("update user: %w", err)
	}

	return u, nil
}

// ListExpenses returns a user's expenses, most recently created first.
func (s *Storage) ListExpenses(ctx context.Context, userID string) ([]ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, amount_cents, category, description, date
		 FROM expenses WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []ExpenseRecord
	for rows.Next() {
		var e ExpenseRecord
		if err := rows.Scan(&e.ID, &e.UserID, &e.AmountCents, &e.Category, &e.Description, &e.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (s *Storage) CreateExpense(ctx context.Context, e ExpenseRecord) (ExpenseRecord, error) {
	if _, err := s.GetUser(ctx, e.UserID); err != nil {
		return ExpenseRecord{}, err
	}

	e.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, amount_cents, category, description, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.AmountCents, e.Category, e.Description, e.Date)
	if err != nil {
		return ExpenseRecord{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

// ExpenseUpdate carries the fields of an update request. Nil means unchanged.
type ExpenseUpdate struct {
	AmountCents *int64
	Category    *string
	Description *string
	Date        *string
}

func (s *Storage) UpdateExpense(ctx context.Context, id string, upd ExpenseUpdate) (ExpenseRecord, error) {
	e, err := s.getExpense(ctx, id)
	if err != nil {
		return ExpenseRecord{}, err
	}

	if upd.AmountCents != nil {
		e.AmountCents = *upd.AmountCents
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE expenses SET amount_cents = ?, category = ?, description = ?, date = ? WHERE id = ?`,
		e.AmountCents, e.Category, e.Description, e.Date, e.ID)
	if err != nil {
		return ExpenseRecord{}, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (s *Storage) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) getExpense(ctx context.Context, id string) (ExpenseRecord, error) {
	var e ExpenseRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, amount_cents, category, description, date
		 FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.UserID, &e.AmountCents, &e.Category, &e.Description, &e.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return ExpenseRecord{}, ErrNotFound
	}
	if err != nil {
		return ExpenseRecord{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}
