package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToCents_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"10.00", 1000},
		{"0.015", 2},
		{"0.014", 1},
		{"19.999", 2000},
		{"0", 0},
	}

	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("parsing %q: %v", tc.in, err)
		}
		if got := ToCents(amount); got != tc.want {
			t.Fatalf("ToCents(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPercentOf(t *testing.T) {
	ten := decimal.NewFromInt(10)

	// 10% of R$20.00 is R$2.00
	if got := PercentOf(2000, ten); got != 200 {
		t.Fatalf("PercentOf(2000, 10) = %d, want 200", got)
	}

	// 10% of R$0.05 rounds half-up to one cent
	if got := PercentOf(5, ten); got != 1 {
		t.Fatalf("PercentOf(5, 10) = %d, want 1", got)
	}

	fractional := decimal.RequireFromString("12.5")
	if got := PercentOf(999, fractional); got != 125 {
		t.Fatalf("PercentOf(999, 12.5) = %d, want 125", got)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(1550); got != "15.50" {
		t.Fatalf("Format(1550) = %q", got)
	}
	if got := Format(0); got != "0.00" {
		t.Fatalf("Format(0) = %q", got)
	}
}

func TestClampNonNegative(t *testing.T) {
	if got := ClampNonNegative(-34); got != 0 {
		t.Fatalf("ClampNonNegative(-34) = %d", got)
	}
	if got := ClampNonNegative(34); got != 34 {
		t.Fatalf("ClampNonNegative(34) = %d", got)
	}
}
