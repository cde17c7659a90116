package services

import (
	"math"

	"DataPos/app/models"
)

// Line math, applied in a fixed order: quantity times unit price, then
// the percentage discount, then VAT on the discounted base. All amounts
// stay unrounded floats; rounding happens at display and print time.

// ComputeLine derives the amounts for a single cart line.
func ComputeLine(item models.CartItem) models.LineTotals {
	subtotal := item.Quantity * item.UnitPrice
	discount := subtotal * item.DiscountPercent / 100
	taxable := subtotal - discount
	vat := taxable * item.VatPercent / 100

	return models.LineTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Taxable:        taxable,
		VatAmount:      vat,
		Total:          taxable + vat,
	}
}

// ComputeCart derives the cart totals as the sum of its line totals.
func ComputeCart(items []models.CartItem) models.CartTotals {
	totals := models.CartTotals{ItemCount: len(items)}

	for _, item := range items {
		line := ComputeLine(item)
		totals.Subtotal += line.Subtotal
		totals.DiscountAmount += line.DiscountAmount
		totals.VatAmount += line.VatAmount
		totals.GrandTotal += line.Total
	}

	return totals
}

// ChangeDue returns the change for a cash payment, never negative.
func ChangeDue(tendered, grandTotal float64) float64 {
	change := tendered - grandTotal
	if change < 0 {
		return 0
	}
	return change
}

// Round2 rounds to two decimals for display and printing.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
