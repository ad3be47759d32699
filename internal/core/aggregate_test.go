package core

import (
	"testing"
	"time"
)

func sampleExpenses() []Expense {
	return []Expense{
		{ID: "1", Amount: Money{Cents: 50000}, Category: "Food", Date: NewDate(2024, time.January, 5)},
		{ID: "2", Amount: Money{Cents: 30000}, Category: "Food", Date: NewDate(2024, time.January, 10)},
		{ID: "3", Amount: Money{Cents: 20000}, Category: "Transport", Date: NewDate(2024, time.January, 12)},
	}
}

func TestTotalsByCategory(t *testing.T) {
	totals := TotalsByCategory(sampleExpenses())
	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(totals))
	}
	if totals["Food"].Cents != 80000 {
		t.Fatalf("Food expected 80000, got %d", totals["Food"].Cents)
	}
	if totals["Transport"].Cents != 20000 {
		t.Fatalf("Transport expected 20000, got %d", totals["Transport"].Cents)
	}
}

// Conservation: category totals always sum to the grand total.
func TestTotalsByCategoryConservation(t *testing.T) {
	sets := [][]Expense{
		nil,
		sampleExpenses(),
		{{Amount: Money{Cents: 1}, Category: "a", Date: NewDate(2024, time.March, 1)},
			{Amount: Money{Cents: 0}, Category: "a", Date: NewDate(2024, time.March, 2)},
			{Amount: Money{Cents: 99}, Category: "b", Date: NewDate(2023, time.March, 1)}},
	}
	for i, set := range sets {
		var sum int64
		for _, m := range TotalsByCategory(set) {
			sum += m.Cents
		}
		if sum != Total(set).Cents {
			t.Fatalf("set %d: category totals sum %d != total %d", i, sum, Total(set).Cents)
		}
	}
}

func TestTotalsByCategoryEmpty(t *testing.T) {
	if totals := TotalsByCategory(nil); len(totals) != 0 {
		t.Fatalf("expected empty map, got %v", totals)
	}
}

func TestTotalsByDate(t *testing.T) {
	expenses := append(sampleExpenses(),
		Expense{ID: "4", Amount: Money{Cents: 1000}, Category: "Food", Date: NewDate(2024, time.January, 5)})
	totals := TotalsByDate(expenses)
	if len(totals) != 3 {
		t.Fatalf("expected 3 date buckets, got %d", len(totals))
	}
	if totals["2024-01-05"].Cents != 51000 {
		t.Fatalf("2024-01-05 expected 51000, got %d", totals["2024-01-05"].Cents)
	}
}

func TestPercentageOfTotal(t *testing.T) {
	if got := PercentageOfTotal(Money{Cents: 80000}, Money{Cents: 100000}); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}
	// zero total never divides by zero
	if got := PercentageOfTotal(Money{Cents: 12345}, Money{}); got != 0 {
		t.Fatalf("expected 0 for zero total, got %v", got)
	}
	if got := PercentageOfTotal(Money{}, Money{}); got != 0 {
		t.Fatalf("expected 0 for zero/zero, got %v", got)
	}
}

func TestMonthlyWindow(t *testing.T) {
	expenses := append(sampleExpenses(),
		Expense{ID: "5", Amount: Money{Cents: 100}, Category: "Food", Date: NewDate(2024, time.February, 1)},
		Expense{ID: "6", Amount: Money{Cents: 100}, Category: "Food", Date: NewDate(2023, time.January, 5)})

	jan := MonthlyWindow(expenses, 2024, time.January)
	if len(jan) != 3 {
		t.Fatalf("expected 3 expenses in 2024-01, got %d", len(jan))
	}
	for _, e := range jan {
		if e.Date.Year() != 2024 || e.Date.Month() != time.January {
			t.Fatalf("expense %s outside window", e.ID)
		}
	}

	now := time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)
	cur := CurrentMonthWindow(expenses, now)
	if len(cur) != 1 || cur[0].ID != "5" {
		t.Fatalf("expected only expense 5 in current month, got %v", cur)
	}
}

func TestBudgetRemaining(t *testing.T) {
	cases := []struct {
		spent, budget, want int64
	}{
		{50000, 100000, 50000},
		{120000, 100000, -20000}, // overspend is a valid state
		{0, 0, 0},
	}
	for _, tc := range cases {
		got := BudgetRemaining(Money{Cents: tc.spent}, Money{Cents: tc.budget})
		if got.Cents != tc.want {
			t.Fatalf("spent=%d budget=%d expected %d, got %d", tc.spent, tc.budget, tc.want, got.Cents)
		}
	}
}

func TestAveragePerBucket(t *testing.T) {
	cases := []struct {
		total   int64
		buckets int
		want    int64
	}{
		{100000, 4, 25000},
		{100, 3, 33}, // 33.33 rounds to 33
		{101, 2, 51}, // 50.5 rounds up
		{0, 0, 0},    // zero buckets never divide by zero
		{500, 0, 0},
	}
	for _, tc := range cases {
		got := AveragePerBucket(Money{Cents: tc.total}, tc.buckets)
		if got.Cents != tc.want {
			t.Fatalf("total=%d buckets=%d expected %d, got %d", tc.total, tc.buckets, tc.want, got.Cents)
		}
	}
}
