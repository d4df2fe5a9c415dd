package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/enum"
	"github.com/lumina-pos/api/internal/inventory"
)

var (
	admin   = domain.Actor{ID: "u-admin", Name: "Ava Admin", Role: enum.UserRoleAdmin}
	cashier = domain.Actor{ID: "u-cashier", Name: "Cal Cashier", Role: enum.UserRoleCashier}
	kitchen = domain.Actor{ID: "u-kitchen", Name: "Kim Kitchen", Role: enum.UserRoleKitchen}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestEngine() *Engine {
	return New(domain.DefaultTaxRate)
}

func seedIngredient(t *testing.T, e *Engine, name, unit, onHand string) domain.Ingredient {
	t.Helper()
	ing, err := e.AddIngredient(IngredientInput{
		Name:   name,
		Unit:   unit,
		OnHand: dec(onHand),
	}, admin)
	if err != nil {
		t.Fatalf("AddIngredient(%s): %v", name, err)
	}
	return ing
}

func seedRecipe(t *testing.T, e *Engine, productID string, lines ...domain.RecipeLine) domain.Recipe {
	t.Helper()
	r, err := e.SaveRecipe(RecipeInput{ProductID: productID, Lines: lines}, admin)
	if err != nil {
		t.Fatalf("SaveRecipe(%s): %v", productID, err)
	}
	return r
}

func placeOrder(t *testing.T, e *Engine, items ...PlaceOrderItem) *domain.Order {
	t.Helper()
	o, err := e.PlaceOrder(PlaceOrderRequest{
		Source:    enum.OrderSourceStaff,
		OrderType: enum.OrderTypeTakeout,
		Items:     items,
	}, cashier)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	return o
}

func sodaItem(qty int) PlaceOrderItem {
	return PlaceOrderItem{ProductID: "soda", Name: "Soda", UnitPrice: dec("2.50"), Quantity: qty}
}

func burgerItem(qty int) PlaceOrderItem {
	return PlaceOrderItem{ProductID: "burger", Name: "Burger", UnitPrice: dec("10.00"), Quantity: qty}
}

func cashPayment(amount string) Payment {
	return Payment{Method: enum.PaymentMethodCash, Amount: dec(amount)}
}

func recipeLine(ingredientID, qty string) domain.RecipeLine {
	return domain.RecipeLine{IngredientID: ingredientID, Qty: dec(qty)}
}

func refundItems(productID string, qty int) []inventory.RefundItem {
	return []inventory.RefundItem{{ProductID: productID, Qty: qty}}
}

func auditActions(o *domain.Order) []string {
	actions := make([]string, len(o.AuditLog))
	for i, entry := range o.AuditLog {
		actions[i] = entry.Action
	}
	return actions
}
