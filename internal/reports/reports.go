// Package reports derives summary statistics and time series from a
// session's transaction ledger.
package reports

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Range selects the time series granularity.
type Range string

const (
	Week  Range = "week"
	Month Range = "month"
	Year  Range = "year"
)

// Ranges lists the selectable ranges in display order.
var Ranges = []Range{Week, Month, Year}

var ErrInvalidRange = errors.New("invalid report range")

// ParseRange parses a range name. The empty string selects Month.
func ParseRange(s string) (Range, error) {
	switch r := Range(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return Month, nil
	case Week, Month, Year:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
}

// Summary holds ledger totals.
type Summary struct {
	Income   core.Money
	Expenses core.Money
	Net      core.Money
	// SavingsRate is Net/Income*100, or 0 when there is no income.
	SavingsRate float64
}

// Point is one bucket of a series.
type Point struct {
	Label    string
	Start    time.Time
	Income   core.Money
	Expenses core.Money
}

// Report is everything the reports screen shows.
type Report struct {
	Range      Range
	Summary    Summary
	ByCategory []core.CategoryAmount
	Series     []Point
}

var hundred = core.NewMoney(100)

// Summarize totals income and expenses over txs.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{Income: core.Zero, Expenses: core.Zero}
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			s.Income = s.Income.Add(t.Amount)
		case core.Expense:
			s.Expenses = s.Expenses.Add(t.Amount)
		}
	}
	s.Net = s.Income.Sub(s.Expenses)
	if s.Income.IsPositive() {
		s.SavingsRate = s.Net.Div(s.Income.Decimal).Mul(hundred.Decimal).InexactFloat64()
	}
	return s
}

// ByCategory sums expenses per category, largest first. Ties are ordered
// by name.
func ByCategory(txs []core.Transaction) []core.CategoryAmount {
	totals := make(map[string]core.Money)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		cur, ok := totals[t.Category]
		if !ok {
			cur = core.Zero
		}
		totals[t.Category] = cur.Add(t.Amount)
	}

	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Series buckets txs for r relative to now: the last seven days for Week,
// the weeks of the current month for Month, the months of the current year
// for Year. Transactions outside the window are ignored.
func Series(txs []core.Transaction, r Range, now time.Time) []Point {
	points := buckets(r, core.DateOf(now).Time)
	if len(points) == 0 {
		return nil
	}
	end := windowEnd(r, points)

	for _, t := range txs {
		d := t.Date.Time
		if d.Before(points[0].Start) || !d.Before(end) {
			continue
		}
		i := sort.Search(len(points), func(i int) bool { return points[i].Start.After(d) }) - 1
		switch t.Type {
		case core.Income:
			points[i].Income = points[i].Income.Add(t.Amount)
		case core.Expense:
			points[i].Expenses = points[i].Expenses.Add(t.Amount)
		}
	}
	return points
}

func buckets(r Range, today time.Time) []Point {
	var points []Point
	add := func(label string, start time.Time) {
		points = append(points, Point{Label: label, Start: start, Income: core.Zero, Expenses: core.Zero})
	}

	switch r {
	case Week:
		for i := 6; i >= 0; i-- {
			day := today.AddDate(0, 0, -i)
			add(day.Format("Mon 02"), day)
		}
	case Month:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		next := first.AddDate(0, 1, 0)
		for n, start := 1, first; start.Before(next); n, start = n+1, start.AddDate(0, 0, 7) {
			add(fmt.Sprintf("Week %d", n), start)
		}
	case Year:
		for m := time.January; m <= time.December; m++ {
			start := time.Date(today.Year(), m, 1, 0, 0, 0, 0, time.UTC)
			add(start.Format("Jan"), start)
		}
	}
	return points
}

func windowEnd(r Range, points []Point) time.Time {
	first := points[0].Start
	switch r {
	case Week:
		return first.AddDate(0, 0, 7)
	case Month:
		return first.AddDate(0, 1, 0)
	default:
		return first.AddDate(1, 0, 0)
	}
}

// Build assembles a report. Totals and categories cover the whole ledger;
// the series covers the selected range.
func Build(txs []core.Transaction, r Range, now time.Time) Report {
	return Report{
		Range:      r,
		Summary:    Summarize(txs),
		ByCategory: ByCategory(txs),
		Series:     Series(txs, r, now),
	}
}
