package engine

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/enum"
	"github.com/lumina-pos/api/internal/inventory"
)

func validUnit(u string) bool {
	switch u {
	case enum.UnitGram, enum.UnitKilogram, enum.UnitMilliliter, enum.UnitLiter, enum.UnitPiece:
		return true
	}
	return false
}

// applyStock mutates on-hand levels and prepends ledger rows. The caller
// holds e.mu and has already validated availability; unknown ingredient ids
// are skipped.
func (e *Engine) applyStock(deductions []inventory.Deduction, entryType, reason, orderID string) {
	for _, d := range deductions {
		ing, ok := e.ingredientsByID[d.IngredientID]
		if !ok {
			continue
		}
		if entryType == enum.StockEntryOut {
			ing.OnHand = ing.OnHand.Sub(d.Qty)
		} else {
			ing.OnHand = ing.OnHand.Add(d.Qty)
		}
		e.stockLedger = append([]domain.StockEntry{{
			ID:           newID(),
			IngredientID: d.IngredientID,
			Type:         entryType,
			Qty:          d.Qty,
			Reason:       reason,
			At:           now(),
			OrderID:      orderID,
		}}, e.stockLedger...)
	}
}

// IngredientInput carries the editable fields of an ingredient.
type IngredientInput struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	OnHand       decimal.Decimal `json:"on_hand"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

func (in *IngredientInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "ingredient name is required"}
	}
	if !validUnit(in.Unit) {
		return &ValidationError{Field: "unit", Reason: "unknown unit"}
	}
	if in.OnHand.IsNegative() {
		return &ValidationError{Field: "on_hand", Reason: "cannot be negative"}
	}
	if in.ReorderLevel.IsNegative() {
		return &ValidationError{Field: "reorder_level", Reason: "cannot be negative"}
	}
	return nil
}

// AddIngredient registers a new stock-tracked ingredient. A non-zero
// starting level is recorded as an IN ledger row.
func (e *Engine) AddIngredient(in IngredientInput, actor domain.Actor) (domain.Ingredient, error) {
	if err := authorize(OpManageIngredient, actor); err != nil {
		return domain.Ingredient{}, err
	}
	if err := in.validate(); err != nil {
		return domain.Ingredient{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ing := &domain.Ingredient{
		ID:           newID(),
		Name:         domain.SanitizeText(in.Name),
		Category:     domain.SanitizeText(in.Category),
		Unit:         in.Unit,
		OnHand:       in.OnHand,
		ReorderLevel: in.ReorderLevel,
	}
	e.ingredients = append([]*domain.Ingredient{ing}, e.ingredients...)
	e.ingredientsByID[ing.ID] = ing
	if in.OnHand.IsPositive() {
		e.stockLedger = append([]domain.StockEntry{{
			ID:           newID(),
			IngredientID: ing.ID,
			Type:         enum.StockEntryIn,
			Qty:          in.OnHand,
			Reason:       "Initial stock",
			At:           now(),
		}}, e.stockLedger...)
	}
	return *ing, nil
}

// UpdateIngredient edits name, category, unit and reorder level. On-hand
// levels only move through AdjustStock or order flows, so the ledger stays
// complete.
func (e *Engine) UpdateIngredient(id string, in IngredientInput, actor domain.Actor) (domain.Ingredient, error) {
	if err := authorize(OpManageIngredient, actor); err != nil {
		return domain.Ingredient{}, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.Ingredient{}, &ValidationError{Field: "name", Reason: "ingredient name is required"}
	}
	if !validUnit(in.Unit) {
		return domain.Ingredient{}, &ValidationError{Field: "unit", Reason: "unknown unit"}
	}
	if in.ReorderLevel.IsNegative() {
		return domain.Ingredient{}, &ValidationError{Field: "reorder_level", Reason: "cannot be negative"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ing, ok := e.ingredientsByID[id]
	if !ok {
		return domain.Ingredient{}, ErrIngredientNotFound
	}
	ing.Name = domain.SanitizeText(in.Name)
	ing.Category = domain.SanitizeText(in.Category)
	ing.Unit = in.Unit
	ing.ReorderLevel = in.ReorderLevel
	return *ing, nil
}

// AdjustStock applies a manual IN or OUT movement with a mandatory reason.
// An OUT that would push on-hand below zero is rejected whole.
func (e *Engine) AdjustStock(ingredientID, entryType string, qty decimal.Decimal, reason string, actor domain.Actor) (domain.Ingredient, error) {
	if err := authorize(OpAdjustStock, actor); err != nil {
		return domain.Ingredient{}, err
	}
	if entryType != enum.StockEntryIn && entryType != enum.StockEntryOut {
		return domain.Ingredient{}, &ValidationError{Field: "type", Reason: "must be IN or OUT"}
	}
	if !qty.IsPositive() {
		return domain.Ingredient{}, &ValidationError{Field: "qty", Reason: "must be positive"}
	}
	reason = domain.SanitizeNote(reason)
	if reason == "" {
		return domain.Ingredient{}, &ValidationError{Field: "reason", Reason: "adjustment reason is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ing, ok := e.ingredientsByID[ingredientID]
	if !ok {
		return domain.Ingredient{}, ErrIngredientNotFound
	}
	if entryType == enum.StockEntryOut && ing.OnHand.LessThan(qty) {
		return domain.Ingredient{}, &GuardError{
			Op:     OpAdjustStock,
			Reason: ing.Name + " has only " + inventory.FormatQty(ing.OnHand, ing.Unit) + " on hand",
		}
	}
	e.applyStock([]inventory.Deduction{{IngredientID: ingredientID, Qty: qty}}, entryType, reason, "")
	return *ing, nil
}

// RecipeInput carries the consumption lines for one product.
type RecipeInput struct {
	ProductID string              `json:"product_id"`
	Lines     []domain.RecipeLine `json:"lines"`
}

// SaveRecipe creates or replaces the recipe for a product. Every line must
// reference an existing ingredient with a positive quantity.
func (e *Engine) SaveRecipe(in RecipeInput, actor domain.Actor) (domain.Recipe, error) {
	if err := authorize(OpManageRecipe, actor); err != nil {
		return domain.Recipe{}, err
	}
	if in.ProductID == "" {
		return domain.Recipe{}, &ValidationError{Field: "product_id", Reason: "product id is required"}
	}
	if len(in.Lines) == 0 {
		return domain.Recipe{}, &ValidationError{Field: "lines", Reason: "recipe needs at least one line"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]bool, len(in.Lines))
	for _, line := range in.Lines {
		if _, ok := e.ingredientsByID[line.IngredientID]; !ok {
			return domain.Recipe{}, ErrIngredientNotFound
		}
		if !line.Qty.IsPositive() {
			return domain.Recipe{}, &ValidationError{Field: "lines", Reason: "line quantity must be positive"}
		}
		if seen[line.IngredientID] {
			return domain.Recipe{}, &ValidationError{Field: "lines", Reason: "duplicate ingredient " + line.IngredientID}
		}
		seen[line.IngredientID] = true
	}

	for _, r := range e.recipes {
		if r.ProductID == in.ProductID {
			r.Lines = append([]domain.RecipeLine(nil), in.Lines...)
			r.UpdatedAt = now()
			return cloneRecipe(r), nil
		}
	}
	r := &domain.Recipe{
		ID:        newID(),
		ProductID: in.ProductID,
		Lines:     append([]domain.RecipeLine(nil), in.Lines...),
		UpdatedAt: now(),
	}
	e.recipes = append(e.recipes, r)
	return cloneRecipe(r), nil
}

// RemoveRecipe deletes a product's recipe; the product then sells without
// stock tracking.
func (e *Engine) RemoveRecipe(productID string, actor domain.Actor) error {
	if err := authorize(OpManageRecipe, actor); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i, r := range e.recipes {
		if r.ProductID == productID {
			e.recipes = append(e.recipes[:i], e.recipes[i+1:]...)
			return nil
		}
	}
	return ErrRecipeNotFound
}
