package core

import (
	"testing"
	"time"
)

func TestReportFilterAllTimeAllCategories(t *testing.T) {
	expenses := sampleExpenses()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	got := ReportFilter{Period: PeriodAllTime, Category: CategoryAll}.Apply(expenses, now)
	if len(got) != len(expenses) {
		t.Fatalf("allTime+all must keep everything, got %d of %d", len(got), len(expenses))
	}
	for i := range got {
		if got[i].ID != expenses[i].ID {
			t.Fatalf("order changed at %d", i)
		}
	}
}

func TestReportFilterCurrentMonth(t *testing.T) {
	expenses := []Expense{
		{ID: "jan24", Amount: Money{Cents: 1}, Category: "a", Date: NewDate(2024, time.January, 5)},
		{ID: "feb24", Amount: Money{Cents: 1}, Category: "a", Date: NewDate(2024, time.February, 5)},
		{ID: "jan23", Amount: Money{Cents: 1}, Category: "a", Date: NewDate(2023, time.January, 5)},
	}
	now := time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

	got := ReportFilter{Period: PeriodCurrentMonth, Category: CategoryAll}.Apply(expenses, now)
	if len(got) != 1 || got[0].ID != "jan24" {
		// same month of a different year must be excluded
		t.Fatalf("expected only jan24, got %v", got)
	}
}

func TestReportFilterLast7Days(t *testing.T) {
	now := time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)
	expenses := []Expense{
		{ID: "recent", Amount: Money{Cents: 1}, Category: "a", Date: NewDate(2024, time.January, 18)},
		{ID: "edge", Amount: Money{Cents: 1}, Category: "a", Date: NewDate(2024, time.January, 13)},
		{ID: "old", Amount: Money{Cents: 1}, Category: "a", Date: NewDate(2024, time.January, 10)},
	}

	got := ReportFilter{Period: PeriodLast7Days}.Apply(expenses, now)
	if len(got) != 1 || got[0].ID != "recent" {
		t.Fatalf("expected only recent, got %v", got)
	}
}

func TestReportFilterCategoryAxis(t *testing.T) {
	expenses := sampleExpenses()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	got := ReportFilter{Period: PeriodAllTime, Category: "Food"}.Apply(expenses, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 Food expenses, got %d", len(got))
	}
	// exact string match only
	got = ReportFilter{Period: PeriodAllTime, Category: "food"}.Apply(expenses, now)
	if len(got) != 0 {
		t.Fatalf("category match is case-sensitive, got %d", len(got))
	}
	// empty category behaves like all
	got = ReportFilter{Period: PeriodAllTime}.Apply(expenses, now)
	if len(got) != 3 {
		t.Fatalf("empty category must keep everything, got %d", len(got))
	}
}

func TestCategories(t *testing.T) {
	got := Categories(sampleExpenses())
	if len(got) != 2 || got[0] != "Food" || got[1] != "Transport" {
		t.Fatalf("expected [Food Transport] in first-seen order, got %v", got)
	}
	if got := Categories(nil); len(got) != 0 {
		t.Fatalf("expected no categories, got %v", got)
	}
}
