package money_test

import (
	"testing"

	"github.com/roastline/storefront/utils/money"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{14.99, 1499},
		{5.00, 500},
		{0.01, 1},
		{10.005, 1001},
		{10.004, 1000},
		{19.999, 2000},
		{2.675, 268},
	}
	for _, tt := range tests {
		if got := money.ToMinorUnits(tt.amount); got != tt.want {
			t.Errorf("ToMinorUnits(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

func TestFromMinorUnits(t *testing.T) {
	tests := []struct {
		amount int64
		want   float64
	}{
		{0, 0},
		{1499, 14.99},
		{500, 5.00},
		{1, 0.01},
		{3000, 30.00},
	}
	for _, tt := range tests {
		if got := money.FromMinorUnits(tt.amount); got != tt.want {
			t.Errorf("FromMinorUnits(%d) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}
