package services_test

import (
	"math"
	"testing"

	"DataPos/app/models"
	"DataPos/app/services"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name string
		item models.CartItem
		want models.LineTotals
	}{
		{
			name: "plain line with vat",
			item: models.CartItem{Quantity: 2, UnitPrice: 10, VatPercent: 18},
			want: models.LineTotals{Subtotal: 20, DiscountAmount: 0, Taxable: 20, VatAmount: 3.6, Total: 23.6},
		},
		{
			name: "discount before vat",
			item: models.CartItem{Quantity: 1, UnitPrice: 100, DiscountPercent: 10, VatPercent: 18},
			want: models.LineTotals{Subtotal: 100, DiscountAmount: 10, Taxable: 90, VatAmount: 16.2, Total: 106.2},
		},
		{
			name: "zero vat",
			item: models.CartItem{Quantity: 3, UnitPrice: 5, VatPercent: 0},
			want: models.LineTotals{Subtotal: 15, Taxable: 15, Total: 15},
		},
		{
			name: "full discount",
			item: models.CartItem{Quantity: 2, UnitPrice: 7.5, DiscountPercent: 100, VatPercent: 18},
			want: models.LineTotals{Subtotal: 15, DiscountAmount: 15, Taxable: 0, VatAmount: 0, Total: 0},
		},
		{
			name: "fractional quantity",
			item: models.CartItem{Quantity: 0.5, UnitPrice: 4, VatPercent: 8},
			want: models.LineTotals{Subtotal: 2, Taxable: 2, VatAmount: 0.16, Total: 2.16},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ComputeLine(tt.item)
			if !almostEqual(got.Subtotal, tt.want.Subtotal) ||
				!almostEqual(got.DiscountAmount, tt.want.DiscountAmount) ||
				!almostEqual(got.Taxable, tt.want.Taxable) ||
				!almostEqual(got.VatAmount, tt.want.VatAmount) ||
				!almostEqual(got.Total, tt.want.Total) {
				t.Errorf("ComputeLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeCartSumsLines(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 2, UnitPrice: 10, VatPercent: 18},
		{Quantity: 1, UnitPrice: 100, DiscountPercent: 10, VatPercent: 18},
	}

	totals := services.ComputeCart(items)

	if totals.ItemCount != 2 {
		t.Errorf("ItemCount = %d, want 2", totals.ItemCount)
	}
	if !almostEqual(totals.Subtotal, 120) {
		t.Errorf("Subtotal = %v, want 120", totals.Subtotal)
	}
	if !almostEqual(totals.DiscountAmount, 10) {
		t.Errorf("DiscountAmount = %v, want 10", totals.DiscountAmount)
	}
	if !almostEqual(totals.VatAmount, 19.8) {
		t.Errorf("VatAmount = %v, want 19.8", totals.VatAmount)
	}
	if !almostEqual(totals.GrandTotal, 129.8) {
		t.Errorf("GrandTotal = %v, want 129.8", totals.GrandTotal)
	}
}

func TestComputeCartEmpty(t *testing.T) {
	totals := services.ComputeCart(nil)
	if totals.ItemCount != 0 || totals.GrandTotal != 0 {
		t.Errorf("empty cart totals = %+v, want zeros", totals)
	}
}

func TestChangeDue(t *testing.T) {
	tests := []struct {
		name     string
		tendered float64
		total    float64
		want     float64
	}{
		{"exact payment", 23.6, 23.6, 0},
		{"overpayment", 30, 23.6, 6.4},
		{"underpayment clamps to zero", 20, 23.6, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ChangeDue(tt.tendered, tt.total); !almostEqual(got, tt.want) {
				t.Errorf("ChangeDue(%v, %v) = %v, want %v", tt.tendered, tt.total, got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{23.599999999, 23.6},
		{6.405, 6.41},
		{-1.005, -1},
		{0, 0},
	}

	for _, tt := range tests {
		if got := services.Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
