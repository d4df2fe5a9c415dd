package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
)

// FormatQty renders a quantity with its unit, dropping the decimal part for
// whole numbers ("2 pcs", "0.25 kg").
func FormatQty(qty decimal.Decimal, unit string) string {
	if qty.IsInteger() {
		return qty.StringFixed(0) + " " + unit
	}
	return qty.StringFixed(2) + " " + unit
}

// ShortageMessage renders a shortage list as a single actionable line.
func ShortageMessage(shortages []Shortage) string {
	if len(shortages) == 0 {
		return ""
	}
	parts := make([]string, len(shortages))
	for i, s := range shortages {
		parts[i] = s.Name + ": need " + FormatQty(s.Required, s.Unit) +
			", on hand " + FormatQty(s.Available, s.Unit)
	}
	return strings.Join(parts, "; ")
}

// DeductionNote renders the audit note recorded alongside order-driven
// stock deductions.
func DeductionNote(ingredients []domain.Ingredient, deductions []Deduction, orderNo string) string {
	if len(deductions) == 0 {
		if orderNo != "" {
			return "Inventory checked for " + orderNo + "."
		}
		return "Inventory checked."
	}

	byID := make(map[string]*domain.Ingredient, len(ingredients))
	for i := range ingredients {
		byID[ingredients[i].ID] = &ingredients[i]
	}

	parts := make([]string, len(deductions))
	for i, d := range deductions {
		name, unit := "Unknown ingredient", "pcs"
		if ing, ok := byID[d.IngredientID]; ok {
			name, unit = ing.Name, ing.Unit
		}
		parts[i] = name + " (-" + FormatQty(d.Qty, unit) + ")"
	}

	if orderNo != "" {
		return "Inventory deducted for " + orderNo + ": " + strings.Join(parts, "; ") + "."
	}
	return "Inventory deducted: " + strings.Join(parts, "; ") + "."
}
