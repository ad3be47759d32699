package core

import "time"

// The aggregation engine. Every function here is a deterministic pure
// function of its arguments: no hidden state, no caching, no errors. Absence
// of data yields empty or zero results. Grouping is by key, so results do not
// depend on input order; map iteration order is a caller concern.

// Total sums the amounts of the given expenses.
func Total(expenses []Expense) Money {
	var cents int64
	for _, e := range expenses {
		cents += e.Amount.Cents
	}
	return Money{Cents: cents}
}

// TotalsByCategory sums amounts grouped by category. Categories not present
// in the input are absent from the result (no zero-fill).
func TotalsByCategory(expenses []Expense) map[string]Money {
	totals := make(map[string]Money)
	for _, e := range expenses {
		t := totals[e.Category]
		t.Cents += e.Amount.Cents
		totals[e.Category] = t
	}
	return totals
}

// TotalsByDate sums amounts grouped by exact date key (YYYY-MM-DD). The full
// series is returned; trimming to the most recent N buckets is the caller's
// job, as is ordering.
func TotalsByDate(expenses []Expense) map[string]Money {
	totals := make(map[string]Money)
	for _, e := range expenses {
		key := e.Date.Key()
		t := totals[key]
		t.Cents += e.Amount.Cents
		totals[key] = t
	}
	return totals
}

// PercentageOfTotal returns amount/total*100. A zero total yields 0 so an
// empty month renders as 0%.
func PercentageOfTotal(amount, total Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return float64(amount.Cents) / float64(total.Cents) * 100
}

// MonthlyWindow filters to expenses whose date falls within the given
// calendar month and year.
func MonthlyWindow(expenses []Expense, year int, month time.Month) []Expense {
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

// CurrentMonthWindow is MonthlyWindow anchored to now's month and year.
func CurrentMonthWindow(expenses []Expense, now time.Time) []Expense {
	return MonthlyWindow(expenses, now.Year(), now.Month())
}

// BudgetRemaining returns budget - totalSpent. A negative result signals
// overspend; it is a valid state, not an error.
func BudgetRemaining(totalSpent, budget Money) Money {
	return Money{Cents: budget.Cents - totalSpent.Cents}
}

// AveragePerBucket returns total divided by the bucket count, rounded
// half-up to the cent, or 0 when the count is zero.
func AveragePerBucket(total Money, buckets int) Money {
	if buckets == 0 {
		return Money{}
	}
	n := int64(buckets)
	cents := total.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	avg := (cents + n/2) / n
	if neg {
		avg = -avg
	}
	return Money{Cents: avg}
}
