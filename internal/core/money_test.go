package core

import (
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{"0", "0.00", nil},
		{"1200", "1200.00", nil},
		{"12.34", "12.34", nil},
		{"12,34", "12.34", nil},
		{" 7.5 ", "7.50", nil},
		{"-3.10", "-3.10", nil},
		{"", "", ErrInvalidAmount},
		{"abc", "", ErrInvalidAmount},
		{"1,234.50", "", ErrInvalidAmount},
		{"1.2.3", "", ErrInvalidAmount},
		{"+4", "4.00", nil},
		{".5", "0.50", nil},
		{"1,2345", "1.23", nil},
		{"1,234", "", ErrInvalidAmount},
		{"12.", "", ErrInvalidAmount},
		{"-", "", ErrInvalidAmount},
		{"1e9", "", ErrInvalidAmount},
		{"1E2", "", ErrInvalidAmount},
		{"1e99999999", "", ErrInvalidAmount},
		{"0x10", "", ErrInvalidAmount},
		{"999999999999999.99", "999999999999999.99", nil},
		{"000000000000000001", "1.00", nil},
		{"1000000000000000", "", ErrInvalidAmount},
		{"0.1234567", "", ErrInvalidAmount},
		{"1 000", "", ErrInvalidAmount},
	}
	for _, c := range cases {
		got, err := ParseMoney(c.in)
		if c.err != nil {
			if !errors.Is(err, c.err) {
				t.Fatalf("ParseMoney(%q) err=%v, want %v", c.in, err, c.err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMoney(%q) unexpected err: %v", c.in, err)
		}
		if got.String() != c.want {
			t.Fatalf("ParseMoney(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MustMoney("10.25")
	b := MustMoney("0.75")
	if got := a.Add(b).String(); got != "11.00" {
		t.Fatalf("Add = %s", got)
	}
	if got := a.Sub(b).String(); got != "9.50" {
		t.Fatalf("Sub = %s", got)
	}
	if a.Cmp(b) <= 0 {
		t.Fatalf("expected a > b")
	}
	if Zero.String() != "0.00" || (Money{}).String() != "0.00" {
		t.Fatalf("zero values should render as 0.00")
	}
}
