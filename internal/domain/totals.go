package domain

import "github.com/shopspring/decimal"

// DefaultTaxRate is the flat sales tax rate applied to every order.
var DefaultTaxRate = decimal.RequireFromString("0.0825")

// Totals holds the computed money fields of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals computes subtotal, tax, and total over top-level line
// items. Bundle sub-items are informational and never priced separately.
// Invariant: Total = Subtotal + Tax.
func CalculateTotals(items []OrderItem, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	tax := subtotal.Mul(taxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// ItemCount returns the number of servings in an order. Bundle lines count
// each sub-item serving scaled by the line quantity.
func ItemCount(items []OrderItem) int {
	count := 0
	for _, it := range items {
		if len(it.BundleItems) > 0 {
			bundle := 0
			for _, b := range it.BundleItems {
				bundle += b.Quantity
			}
			count += bundle * it.Quantity
			continue
		}
		count += it.Quantity
	}
	return count
}
