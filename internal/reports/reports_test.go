package reports

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
)

func tx(date string, typ core.TransactionType, category, amount string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{Date: d, Type: typ, Category: category, Amount: core.MustMoney(amount)}
}

func ledger() []core.Transaction {
	return []core.Transaction{
		tx("2025-03-01", core.Income, "Salary", "8000"),
		tx("2025-03-03", core.Expense, "Bills", "500"),
		tx("2025-03-09", core.Expense, "Groceries", "300"),
		tx("2025-03-12", core.Expense, "Shopping", "250"),
		tx("2025-03-20", core.Expense, "Groceries", "200"),
		tx("2025-02-27", core.Expense, "Transportation", "200"),
		tx("2025-03-30", core.Expense, "Entertainment", "4850"),
	}
}

func checkMoney(t *testing.T, what string, got core.Money, want string) {
	t.Helper()
	if got.String() != want {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    Range
		wantErr bool
	}{
		{"", Month, false},
		{"week", Week, false},
		{" Year ", Year, false},
		{"decade", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Errorf("ParseRange(%q) err = %v, want ErrInvalidRange", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRange(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(ledger())
	checkMoney(t, "Income", s.Income, "8000.00")
	checkMoney(t, "Expenses", s.Expenses, "6300.00")
	checkMoney(t, "Net", s.Net, "1700.00")
	if math.Abs(s.SavingsRate-21.25) > 1e-9 {
		t.Errorf("SavingsRate = %v, want 21.25", s.SavingsRate)
	}
}

func TestSummarize_NoIncome(t *testing.T) {
	s := Summarize([]core.Transaction{tx("2025-01-12", core.Expense, "Groceries", "150")})
	checkMoney(t, "Net", s.Net, "-150.00")
	if s.SavingsRate != 0 {
		t.Errorf("SavingsRate = %v, want 0", s.SavingsRate)
	}

	empty := Summarize(nil)
	if !empty.Net.IsZero() || empty.SavingsRate != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestByCategory(t *testing.T) {
	got := ByCategory(ledger())
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}

	names := make([]string, len(got))
	for i, c := range got {
		names[i] = c.Name
	}
	want := []string{"Entertainment", "Bills", "Groceries", "Shopping", "Transportation"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
	checkMoney(t, "Bills", got[1].Amount, "500.00")
	checkMoney(t, "Groceries", got[2].Amount, "500.00")
}

func TestSeries_Month(t *testing.T) {
	now := time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC)
	points := Series(ledger(), Month, now)

	if len(points) != 5 {
		t.Fatalf("len = %d, want 5", len(points))
	}
	if points[0].Label != "Week 1" || points[4].Label != "Week 5" {
		t.Errorf("labels = %q..%q", points[0].Label, points[4].Label)
	}
	checkMoney(t, "week 1 income", points[0].Income, "8000.00")
	checkMoney(t, "week 1 expenses", points[0].Expenses, "500.00")
	checkMoney(t, "week 2 expenses", points[1].Expenses, "550.00")
	checkMoney(t, "week 3 expenses", points[2].Expenses, "200.00")
	checkMoney(t, "week 4 expenses", points[3].Expenses, "0.00")
	checkMoney(t, "week 5 expenses", points[4].Expenses, "4850.00")
}

func TestSeries_Week(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	points := Series(ledger(), Week, now)

	if len(points) != 7 {
		t.Fatalf("len = %d, want 7", len(points))
	}
	if points[0].Label != "Tue 25" || points[6].Label != "Mon 03" {
		t.Errorf("labels = %q..%q", points[0].Label, points[6].Label)
	}
	checkMoney(t, "Thu expenses", points[2].Expenses, "200.00")
	checkMoney(t, "Sat income", points[4].Income, "8000.00")
	checkMoney(t, "Mon expenses", points[6].Expenses, "500.00")
}

func TestSeries_Year(t *testing.T) {
	now := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	points := Series(ledger(), Year, now)

	if len(points) != 12 {
		t.Fatalf("len = %d, want 12", len(points))
	}
	if points[0].Label != "Jan" || points[11].Label != "Dec" {
		t.Errorf("labels = %q..%q", points[0].Label, points[11].Label)
	}
	checkMoney(t, "Feb expenses", points[1].Expenses, "200.00")
	checkMoney(t, "Mar expenses", points[2].Expenses, "6100.00")
	checkMoney(t, "Mar income", points[2].Income, "8000.00")
	checkMoney(t, "Jun income", points[5].Income, "0.00")
}

func TestBuild(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Build(ledger(), Year, now)

	if r.Range != Year {
		t.Errorf("Range = %q", r.Range)
	}
	checkMoney(t, "Net", r.Summary.Net, "1700.00")
	if len(r.ByCategory) != 5 {
		t.Errorf("ByCategory len = %d, want 5", len(r.ByCategory))
	}
	if len(r.Series) != 12 {
		t.Fatalf("Series len = %d, want 12", len(r.Series))
	}
	for _, p := range r.Series {
		if !p.Expenses.IsZero() {
			t.Errorf("%s expenses = %s, want 0 outside the range", p.Label, p.Expenses)
		}
	}
}
