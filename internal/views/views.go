// Package views reshapes aggregation results into renderer-ready series for
// the dashboard cards, the chart feeders and the reports page. It contains
// no independent derivation logic: every number comes from the core engine,
// recomputed on demand from the current store state.
package views

import (
	"sort"
	"time"

	"onero/internal/core"
)

// Bucket caps applied by the chart feeders. The engine always returns the
// full series; trimming is a presentation decision made here.
const (
	barBuckets  = 10
	lineBuckets = 14
)

type (
	// CategoryShare is one slice of a category breakdown.
	CategoryShare struct {
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
		Percent  float64    `json:"percent"`
	}

	// TimePoint is one bucket of a daily series.
	TimePoint struct {
		Date         string     `json:"date"`
		Amount       core.Money `json:"amount"`
		PercentOfMax float64    `json:"percentOfMax"`
	}

	// DashboardSummary feeds the dashboard stat cards and the spending
	// breakdown, all scoped to the current calendar month.
	DashboardSummary struct {
		Currency     string          `json:"currency"`
		TotalSpent   core.Money      `json:"totalSpent"`
		Remaining    core.Money      `json:"remaining"`
		Overspent    bool            `json:"overspent"`
		Transactions int             `json:"transactions"`
		Breakdown    []CategoryShare `json:"breakdown"`
	}

	// Report feeds the reports page for one filter selection.
	Report struct {
		Daily        []TimePoint     `json:"daily"`
		Breakdown    []CategoryShare `json:"breakdown"`
		Total        core.Money      `json:"total"`
		AverageDaily core.Money      `json:"averageDaily"`
		Count        int             `json:"count"`
		Categories   []string        `json:"categories"`
	}
)

// Dashboard computes the stat cards for now's calendar month.
func Dashboard(expenses []core.Expense, profile core.Profile, now time.Time) DashboardSummary {
	monthly := core.CurrentMonthWindow(expenses, now)
	total := core.Total(monthly)
	remaining := core.BudgetRemaining(total, profile.Budget)
	return DashboardSummary{
		Currency:     profile.Currency,
		TotalSpent:   total,
		Remaining:    remaining,
		Overspent:    remaining.Cents < 0,
		Transactions: len(monthly),
		Breakdown:    breakdown(monthly),
	}
}

// Pie feeds the category pie chart over the full expense set.
func Pie(expenses []core.Expense) []CategoryShare {
	return breakdown(expenses)
}

// Bars feeds the daily bar chart: chronological series capped to the most
// recent 10 buckets, each carrying percent-of-max for bar heights.
func Bars(expenses []core.Expense) []TimePoint {
	points := dailySeries(expenses, barBuckets)
	var max int64
	for _, p := range points {
		if p.Amount.Cents > max {
			max = p.Amount.Cents
		}
	}
	for i := range points {
		points[i].PercentOfMax = core.PercentageOfTotal(points[i].Amount, core.Money{Cents: max})
	}
	return points
}

// TrendLine feeds the line chart: chronological series capped to the most
// recent 14 buckets.
func TrendLine(expenses []core.Expense) []TimePoint {
	return dailySeries(expenses, lineBuckets)
}

// Recent returns the n most recent expenses in held order.
func Recent(expenses []core.Expense, n int) []core.Expense {
	if n > len(expenses) {
		n = len(expenses)
	}
	out := make([]core.Expense, n)
	copy(out, expenses[:n])
	return out
}

// BuildReport filters the expense set and derives the reports-page data.
// The category selector always reflects the unfiltered set.
func BuildReport(expenses []core.Expense, filter core.ReportFilter, now time.Time) Report {
	filtered := filter.Apply(expenses, now)
	daily := core.TotalsByDate(filtered)
	total := core.Total(filtered)
	return Report{
		Daily:        chronological(daily),
		Breakdown:    breakdown(filtered),
		Total:        total,
		AverageDaily: core.AveragePerBucket(total, len(daily)),
		Count:        len(filtered),
		Categories:   core.Categories(expenses),
	}
}

// breakdown turns category totals into shares sorted descending by amount,
// ties broken by name for stable output.
func breakdown(expenses []core.Expense) []CategoryShare {
	totals := core.TotalsByCategory(expenses)
	grand := core.Total(expenses)
	out := make([]CategoryShare, 0, len(totals))
	for category, amount := range totals {
		out = append(out, CategoryShare{
			Category: category,
			Amount:   amount,
			Percent:  core.PercentageOfTotal(amount, grand),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// chronological orders a date-keyed series by date. Date keys are ISO
// formatted, so string order is chronological order.
func chronological(series map[string]core.Money) []TimePoint {
	out := make([]TimePoint, 0, len(series))
	for date, amount := range series {
		out = append(out, TimePoint{Date: date, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// dailySeries builds the chronological daily series and keeps the last n
// buckets.
func dailySeries(expenses []core.Expense, n int) []TimePoint {
	points := chronological(core.TotalsByDate(expenses))
	if len(points) > n {
		points = points[len(points)-n:]
	}
	return points
}
