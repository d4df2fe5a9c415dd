// Package inventory resolves sellable products to ingredient consumption
// and validates orders against current stock. All functions are pure; the
// engine owns mutation.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
)

// Deduction is the required consumption of one ingredient.
type Deduction struct {
	IngredientID string          `json:"ingredient_id"`
	Qty          decimal.Decimal `json:"qty"`
}

// Shortage describes insufficient stock for one ingredient, with enough
// context for the caller to render an actionable message.
type Shortage struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Deficit      decimal.Decimal `json:"deficit"`
}

// Validation is the result of checking an order against stock.
type Validation struct {
	OK         bool        `json:"ok"`
	Deductions []Deduction `json:"deductions"`
	Shortages  []Shortage  `json:"shortages"`
}

// RefundItem selects a line item and quantity for refund restocking.
type RefundItem struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// accumulator sums required quantities per ingredient, preserving first-seen
// order so deduction lists and notes are deterministic.
type accumulator struct {
	order []string
	qty   map[string]decimal.Decimal
}

func newAccumulator() *accumulator {
	return &accumulator{qty: make(map[string]decimal.Decimal)}
}

func (a *accumulator) add(ingredientID string, qty decimal.Decimal) {
	if _, ok := a.qty[ingredientID]; !ok {
		a.order = append(a.order, ingredientID)
	}
	a.qty[ingredientID] = a.qty[ingredientID].Add(qty)
}

func (a *accumulator) deductions() []Deduction {
	if len(a.order) == 0 {
		return nil
	}
	out := make([]Deduction, len(a.order))
	for i, id := range a.order {
		out[i] = Deduction{IngredientID: id, Qty: a.qty[id]}
	}
	return out
}

// BuildDeductions computes the ingredient quantities an order consumes.
// A line with bundle sub-items expands each sub-item's own recipe scaled by
// (sub-item qty × line qty); otherwise the line's own recipe is scaled by
// line qty. Products without a recipe contribute nothing; that is not an
// error. Deductions for the same ingredient across lines are summed.
func BuildDeductions(items []domain.OrderItem, recipes []domain.Recipe) []Deduction {
	byProduct := make(map[string]*domain.Recipe, len(recipes))
	for i := range recipes {
		byProduct[recipes[i].ProductID] = &recipes[i]
	}

	acc := newAccumulator()
	for _, item := range items {
		if len(item.BundleItems) > 0 {
			for _, sub := range item.BundleItems {
				recipe, ok := byProduct[sub.ID]
				if !ok {
					continue
				}
				servings := decimal.NewFromInt(int64(sub.Quantity * item.Quantity))
				for _, line := range recipe.Lines {
					acc.add(line.IngredientID, line.Qty.Mul(servings))
				}
			}
			continue
		}

		recipe, ok := byProduct[item.ID]
		if !ok {
			continue
		}
		servings := decimal.NewFromInt(int64(item.Quantity))
		for _, line := range recipe.Lines {
			acc.add(line.IngredientID, line.Qty.Mul(servings))
		}
	}
	return acc.deductions()
}

// BuildRefundDeductions computes deductions for a refunded subset of line
// items, re-using the same expansion logic with quantities capped at the
// originally ordered quantity. Unknown product ids are ignored.
func BuildRefundDeductions(items []domain.OrderItem, refund []RefundItem, recipes []domain.Recipe) []Deduction {
	if len(refund) == 0 {
		return nil
	}
	refundQty := make(map[string]int, len(refund))
	for _, r := range refund {
		refundQty[r.ProductID] = r.Qty
	}

	subset := make([]domain.OrderItem, 0, len(refund))
	for _, item := range items {
		qty, ok := refundQty[item.ID]
		if !ok || qty <= 0 {
			continue
		}
		if qty > item.Quantity {
			qty = item.Quantity
		}
		item.Quantity = qty
		subset = append(subset, item)
	}
	return BuildDeductions(subset, recipes)
}

// Validate computes deductions for an order and checks them against current
// stock. OK is true iff no ingredient is short.
func Validate(items []domain.OrderItem, recipes []domain.Recipe, ingredients []domain.Ingredient) Validation {
	deductions := BuildDeductions(items, recipes)
	if len(deductions) == 0 {
		return Validation{OK: true}
	}

	byID := make(map[string]*domain.Ingredient, len(ingredients))
	for i := range ingredients {
		byID[ingredients[i].ID] = &ingredients[i]
	}

	var shortages []Shortage
	for _, d := range deductions {
		name, unit := "Unknown ingredient", "pcs"
		available := decimal.Zero
		if ing, ok := byID[d.IngredientID]; ok {
			name, unit, available = ing.Name, ing.Unit, ing.OnHand
		}
		if available.LessThan(d.Qty) {
			shortages = append(shortages, Shortage{
				IngredientID: d.IngredientID,
				Name:         name,
				Unit:         unit,
				Required:     d.Qty,
				Available:    available,
				Deficit:      d.Qty.Sub(available),
			})
		}
	}

	return Validation{OK: len(shortages) == 0, Deductions: deductions, Shortages: shortages}
}
