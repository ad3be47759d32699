package core

import "time"

// Period is the time-range axis of the report filter.
type Period string

const (
	PeriodLast7Days    Period = "last7days"
	PeriodCurrentMonth Period = "currentMonth"
	PeriodAllTime      Period = "allTime"
)

// CategoryAll selects every category on the category axis.
const CategoryAll = "all"

// ReportFilter combines two independent dimensions by conjunction: a period
// axis and a category axis. It never fails; unknown values behave like the
// widest selection so a stale query can only widen, not break, a report.
type ReportFilter struct {
	Period   Period
	Category string
}

// Apply returns the subset of expenses matching both axes. now anchors the
// last7days and currentMonth predicates.
func (f ReportFilter) Apply(expenses []Expense, now time.Time) []Expense {
	out := make([]Expense, 0, len(expenses))
	cutoff := now.Add(-7 * 24 * time.Hour)
	for _, e := range expenses {
		switch f.Period {
		case PeriodLast7Days:
			if e.Date.Before(cutoff) {
				continue
			}
		case PeriodCurrentMonth:
			if e.Date.Month() != now.Month() || e.Date.Year() != now.Year() {
				continue
			}
		}
		if f.Category != "" && f.Category != CategoryAll && e.Category != f.Category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Categories returns the distinct category values observed in the given
// expenses, in first-seen order. This feeds the category axis selector.
func Categories(expenses []Expense) []string {
	seen := make(map[string]struct{}, len(expenses))
	out := make([]string, 0, len(expenses))
	for _, e := range expenses {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}
