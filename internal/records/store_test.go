package records

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"fintrack/internal/core"
)

var fixedNow = func() time.Time { return time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC) }

func seededBudgets() *Budgets {
	return NewStore(BudgetKind(),
		core.Budget{ID: 1, Category: "Groceries", Amount: core.NewMoney(500), Spent: core.NewMoney(350), Period: core.Monthly},
		core.Budget{ID: 2, Category: "Entertainment", Amount: core.NewMoney(200), Spent: core.NewMoney(150), Period: core.Monthly},
		core.Budget{ID: 3, Category: "Transportation", Amount: core.NewMoney(300), Spent: core.NewMoney(200), Period: core.Monthly},
	)
}

func mustSet[R, D any](t *testing.T, s *Store[R, D], field, value string) {
	t.Helper()
	if err := s.SetField(field, value); err != nil {
		t.Fatalf("SetField(%s, %q): %v", field, value, err)
	}
}

func TestStore_SubmitBudget(t *testing.T) {
	s := seededBudgets()
	s.Open()
	mustSet(t, s, FieldCategory, "Rent")
	mustSet(t, s, FieldAmount, "1200")
	mustSet(t, s, FieldPeriod, "yearly")

	b, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if b.ID != 4 || b.Category != "Rent" || b.Amount.String() != "1200.00" {
		t.Errorf("unexpected budget %+v", b)
	}
	if !b.Spent.IsZero() {
		t.Errorf("Spent = %s, want 0", b.Spent)
	}
	if b.Period != core.Yearly {
		t.Errorf("Period = %s, want yearly", b.Period)
	}
	if s.Len() != 4 || s.State() != Idle {
		t.Errorf("Len=%d State=%s, want 4 idle", s.Len(), s.State())
	}

	list := s.List()
	if list[0].Category != "Groceries" || list[3].Category != "Rent" {
		t.Errorf("insertion order lost: %s ... %s", list[0].Category, list[3].Category)
	}
}

func TestStore_CancelLeavesCollectionUnchanged(t *testing.T) {
	s := seededBudgets()
	before := s.List()

	s.Open()
	mustSet(t, s, FieldCategory, "Gym")
	mustSet(t, s, FieldAmount, "40")
	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if !reflect.DeepEqual(before, s.List()) {
		t.Error("cancel changed the collection")
	}
	if s.State() != Idle {
		t.Errorf("State = %s, want idle", s.State())
	}

	s.Open()
	draft, open := s.Draft()
	if !open {
		t.Fatal("form should be open")
	}
	if draft != (BudgetDraft{Period: "monthly"}) {
		t.Errorf("reopened draft = %+v, want a fresh one", draft)
	}
}

func TestStore_WrongState(t *testing.T) {
	s := seededBudgets()
	if err := s.SetField(FieldCategory, "x"); !errors.Is(err, ErrNotComposing) {
		t.Errorf("SetField err = %v", err)
	}
	if _, err := s.Submit(); !errors.Is(err, ErrNotComposing) {
		t.Errorf("Submit err = %v", err)
	}
	if _, err := s.SubmitWith(map[string]string{FieldCategory: "x"}); !errors.Is(err, ErrNotComposing) {
		t.Errorf("SubmitWith err = %v", err)
	}
	if err := s.Cancel(); !errors.Is(err, ErrNotComposing) {
		t.Errorf("Cancel err = %v", err)
	}
}

func TestStore_UnknownField(t *testing.T) {
	s := seededBudgets()
	s.Open()
	if err := s.SetField("spent", "10"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("SetField err = %v, want ErrUnknownField", err)
	}

	_, err := s.SubmitWith(map[string]string{FieldCategory: "Rent", "spent": "10"})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("SubmitWith err = %v, want ErrUnknownField", err)
	}
	if draft, _ := s.Draft(); draft.Category != "" {
		t.Errorf("known field applied despite rejection: %+v", draft)
	}
}

func TestStore_InvalidNumberStaysComposing(t *testing.T) {
	s := seededBudgets()
	s.Open()
	mustSet(t, s, FieldCategory, "Rent")
	mustSet(t, s, FieldAmount, "lots")

	if _, err := s.Submit(); !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("Submit err = %v, want ErrInvalidNumber", err)
	}
	if s.State() != Composing || s.Len() != 3 {
		t.Fatalf("State=%s Len=%d, want composing 3", s.State(), s.Len())
	}
	if draft, _ := s.Draft(); draft.Category != "Rent" {
		t.Errorf("draft lost: %+v", draft)
	}

	mustSet(t, s, FieldAmount, "900")
	b, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if b.ID != 4 {
		t.Errorf("ID = %d, want 4", b.ID)
	}
}

func TestStore_ExponentAmountsRejected(t *testing.T) {
	for _, amount := range []string{"1e9", "1e99999999", "2E3", "1000000000000000"} {
		s := seededBudgets()
		s.Open()
		mustSet(t, s, FieldCategory, "Rent")
		mustSet(t, s, FieldAmount, amount)

		if _, err := s.Submit(); !errors.Is(err, ErrInvalidNumber) {
			t.Errorf("amount %q: err = %v, want ErrInvalidNumber", amount, err)
		}
		if s.Len() != 3 || s.State() != Composing {
			t.Errorf("amount %q: Len=%d State=%s", amount, s.Len(), s.State())
		}
	}
}

func TestStore_InvariantRejected(t *testing.T) {
	s := seededBudgets()
	s.Open()
	mustSet(t, s, FieldCategory, "Rent")
	mustSet(t, s, FieldAmount, "0")
	if _, err := s.Submit(); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("zero amount err = %v", err)
	}

	mustSet(t, s, FieldAmount, "10")
	mustSet(t, s, FieldPeriod, "weekly")
	if _, err := s.Submit(); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("weekly period err = %v", err)
	}
}

func TestStore_DuplicateSubmit(t *testing.T) {
	s := seededBudgets()
	s.Open()
	mustSet(t, s, FieldCategory, "Rent")
	mustSet(t, s, FieldAmount, "1200")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Submit()
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			if !errors.Is(err, ErrNotComposing) {
				t.Errorf("unexpected err %v", err)
			}
			failures++
		}
	}
	if failures != 1 || s.Len() != 4 {
		t.Errorf("failures=%d Len=%d, want 1 and 4", failures, s.Len())
	}
}

func TestStore_SubmitWithKeepsFieldsTogether(t *testing.T) {
	const posts = 20
	s := NewStore(BudgetKind())

	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for {
				s.Open()
				_, err := s.SubmitWith(map[string]string{
					FieldCategory: fmt.Sprintf("cat-%d", i),
					FieldAmount:   fmt.Sprintf("%d", i+1),
				})
				if err == nil {
					return
				}
				if !errors.Is(err, ErrNotComposing) {
					t.Errorf("post %d: %v", i, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	list := s.List()
	if len(list) != posts {
		t.Fatalf("Len = %d, want %d", len(list), posts)
	}
	for _, b := range list {
		var n int
		if _, err := fmt.Sscanf(b.Category, "cat-%d", &n); err != nil {
			t.Fatalf("category %q: %v", b.Category, err)
		}
		if want := fmt.Sprintf("%d.00", n+1); b.Amount.String() != want {
			t.Errorf("%s has amount %s, want %s", b.Category, b.Amount, want)
		}
	}
}

func TestStore_ListIsCopy(t *testing.T) {
	s := seededBudgets()
	list := s.List()
	list[0].Category = "mutated"
	if got := s.List()[0].Category; got != "Groceries" {
		t.Errorf("store mutated through List: %q", got)
	}
}

func TestTransactionKind(t *testing.T) {
	s := NewStore(TransactionKind(fixedNow))
	s.Open()
	mustSet(t, s, FieldType, "income")
	mustSet(t, s, FieldCategory, "Salary")
	mustSet(t, s, FieldAmount, "2500,50")

	tx, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tx.ID != 1 || tx.Type != core.Income || tx.Amount.String() != "2500.50" {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if tx.Date.String() != "2025-02-03" {
		t.Errorf("Date = %s, want today", tx.Date)
	}

	s.Open()
	mustSet(t, s, FieldCategory, "Bills")
	mustSet(t, s, FieldAmount, "80")
	mustSet(t, s, FieldDate, "2025-01-30")
	tx, err = s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if tx.ID != 2 || tx.Type != core.Expense || tx.Date.String() != "2025-01-30" {
		t.Errorf("unexpected transaction %+v", tx)
	}
}

func TestGoalKind(t *testing.T) {
	s := NewStore(GoalKind())
	s.Open()
	mustSet(t, s, FieldName, "Vacation")
	mustSet(t, s, FieldTargetAmount, "5000")
	mustSet(t, s, FieldCurrentAmount, "6000")
	mustSet(t, s, FieldDeadline, "2025-06-30")

	g, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if g.Progress() != 120.0 {
		t.Errorf("Progress = %v, want 120", g.Progress())
	}

	s.Open()
	mustSet(t, s, FieldName, "Bike")
	mustSet(t, s, FieldTargetAmount, "800")
	mustSet(t, s, FieldDeadline, "2025-09-01")
	g, err = s.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !g.Current.IsZero() {
		t.Errorf("Current = %s, want 0", g.Current)
	}

	s.Open()
	mustSet(t, s, FieldName, "Car")
	mustSet(t, s, FieldTargetAmount, "100")
	if _, err := s.Submit(); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("missing deadline err = %v", err)
	}
}
