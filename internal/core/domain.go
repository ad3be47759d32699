package core

import (
	"errors"
	"strings"
	"time"
)

type (
	// Date is a calendar date with no time-of-day semantics.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is one spending event. ID is assigned by the external store;
	// a draft submitted for creation carries an empty ID.
	Expense struct {
		ID          string
		Amount      Money
		Category    string
		Description string
		Date        Date
	}

	// Profile is the per-user display and budget configuration. Currency is
	// a presentation symbol only and never participates in arithmetic.
	Profile struct {
		Budget   Money  `json:"budget"`
		Currency string `json:"currency"`
	}

	// User is the authenticated account as returned by the external store.
	User struct {
		ID       string
		Name     string
		Email    string
		Budget   Money
		Currency string
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
)

// DefaultProfile is the profile applied before login and restored on logout.
func DefaultProfile() Profile {
	return Profile{
		Budget:   Money{Cents: 20000 * 100},
		Currency: "₹",
	}
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Key returns the YYYY-MM-DD form used as a time-bucket key.
func (d Date) Key() string {
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks an expense draft before it is sent to the external store.
// The ID is not checked: drafts have none, canonical records always do.
func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// Profile returns the display configuration held on the user record.
func (u User) Profile() Profile {
	return Profile{Budget: u.Budget, Currency: u.Currency}
}
