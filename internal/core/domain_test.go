package core

import (
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2024, time.January, 5), true},
		{NewDate(2025, time.December, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDateKeyRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Key() != "2024-01-05" {
		t.Fatalf("expected key 2024-01-05, got %s", d.Key())
	}
	if _, err := ParseDate("05/01/2024"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero amount is valid, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2024, time.January, 5),
		Amount:      Money{Cents: 50000},
		Category:    "Food",
		Description: "groceries",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// description is optional
	good.Description = ""
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok without description, got %v", err)
	}

	bads := []Expense{
		{Date: Date{}, Amount: Money{Cents: 1}, Category: "c"},
		{Date: NewDate(2024, time.January, 5), Amount: Money{Cents: -1}, Category: "c"},
		{Date: NewDate(2024, time.January, 5), Amount: Money{Cents: 1}, Category: "  "},
		{Date: NewDate(2024, time.January, 5), Amount: Money{Cents: 1}, Category: "c", Description: strings.Repeat("x", 201)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
