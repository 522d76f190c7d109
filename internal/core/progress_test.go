package core

import (
	"math"
	"testing"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		consumed, total float64
		want            float64
	}{
		{350, 500, 70},
		{150, 200, 75},
		{200, 300, 66.66666666666667},
		{15000, 30000, 50},
		{6000, 5000, 120},
		{0, 100, 0},
	}
	for _, c := range cases {
		got := Percentage(NewMoney(c.consumed), NewMoney(c.total))
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Percentage(%v, %v) = %v, want %v", c.consumed, c.total, got, c.want)
		}
	}
}

func TestPercentage_ZeroTotal(t *testing.T) {
	if !math.IsInf(Percentage(NewMoney(10), Zero), 1) {
		t.Error("positive over zero should be +Inf")
	}
	if !math.IsInf(Percentage(NewMoney(-10), Zero), -1) {
		t.Error("negative over zero should be -Inf")
	}
	if !math.IsNaN(Percentage(Zero, Zero)) {
		t.Error("zero over zero should be NaN")
	}
}

func TestTierOf(t *testing.T) {
	cases := []struct {
		pct  float64
		want Tier
	}{
		{0, TierNormal},
		{75, TierNormal},
		{75.01, TierWarning},
		{90, TierWarning},
		{90.5, TierCritical},
		{120, TierCritical},
		{math.Inf(1), TierCritical},
		{math.NaN(), TierNormal},
	}
	for _, c := range cases {
		if got := TierOf(c.pct); got != c.want {
			t.Errorf("TierOf(%v) = %v, want %v", c.pct, got, c.want)
		}
	}
}

func TestTierColor(t *testing.T) {
	if TierCritical.Color() != "#f44336" || TierWarning.Color() != "#ff9800" || TierNormal.Color() != "#4caf50" {
		t.Fatal("unexpected tier colours")
	}
}

func TestClampAndRound(t *testing.T) {
	if Clamp(120) != 100 || Clamp(-5) != 0 || Clamp(math.NaN()) != 0 || Clamp(42) != 42 {
		t.Fatal("Clamp out of range")
	}
	if n, ok := RoundPercent(47.5); !ok || n != 48 {
		t.Fatalf("RoundPercent(47.5) = %d, %v", n, ok)
	}
	if _, ok := RoundPercent(math.Inf(1)); ok {
		t.Fatal("expected non-finite to report false")
	}
}

func TestBudgetProgress(t *testing.T) {
	b := Budget{Category: "Groceries", Amount: NewMoney(500), Spent: NewMoney(350), Period: Monthly}
	if b.Progress() != 70 || TierOf(b.Progress()) != TierNormal {
		t.Fatalf("groceries progress %v", b.Progress())
	}
	b = Budget{Category: "Entertainment", Amount: NewMoney(200), Spent: NewMoney(150), Period: Monthly}
	if TierOf(b.Progress()) != TierNormal {
		t.Fatal("exactly 75 percent is normal")
	}
}
