package inventory

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/enum"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRecipes() []domain.Recipe {
	return []domain.Recipe{
		{
			ID: "r1", ProductID: "burger",
			Lines: []domain.RecipeLine{
				{IngredientID: "patty", Qty: dec("1")},
				{IngredientID: "bun", Qty: dec("1")},
			},
		},
		{
			ID: "r2", ProductID: "fries",
			Lines: []domain.RecipeLine{
				{IngredientID: "potato", Qty: dec("0.2")},
			},
		},
	}
}

func findDeduction(t *testing.T, ds []Deduction, ingredientID string) Deduction {
	t.Helper()
	for _, d := range ds {
		if d.IngredientID == ingredientID {
			return d
		}
	}
	t.Fatalf("no deduction for %s", ingredientID)
	return Deduction{}
}

func TestBuildDeductions_ScalesByLineQty(t *testing.T) {
	items := []domain.OrderItem{
		{ID: "burger", Quantity: 3},
		{ID: "fries", Quantity: 2},
	}

	ds := BuildDeductions(items, testRecipes())
	if len(ds) != 3 {
		t.Fatalf("got %d deductions, want 3", len(ds))
	}
	if d := findDeduction(t, ds, "patty"); !d.Qty.Equal(dec("3")) {
		t.Fatalf("patty = %s, want 3", d.Qty)
	}
	if d := findDeduction(t, ds, "potato"); !d.Qty.Equal(dec("0.4")) {
		t.Fatalf("potato = %s, want 0.4", d.Qty)
	}
}

func TestBuildDeductions_SumsAcrossLines(t *testing.T) {
	items := []domain.OrderItem{
		{ID: "burger", Quantity: 1},
		{ID: "burger", Quantity: 2},
	}

	ds := BuildDeductions(items, testRecipes())
	if d := findDeduction(t, ds, "patty"); !d.Qty.Equal(dec("3")) {
		t.Fatalf("patty = %s, want 3 (summed across lines)", d.Qty)
	}
}

func TestBuildDeductions_ExpandsBundles(t *testing.T) {
	// 2 boxes, each containing 2 burgers and 1 fries:
	// patty = 1 * 2 * 2 = 4, potato = 0.2 * 1 * 2 = 0.4
	items := []domain.OrderItem{
		{
			ID: "family-box", Quantity: 2,
			BundleItems: []domain.BundleItem{
				{ID: "burger", Quantity: 2},
				{ID: "fries", Quantity: 1},
			},
		},
	}

	ds := BuildDeductions(items, testRecipes())
	if d := findDeduction(t, ds, "patty"); !d.Qty.Equal(dec("4")) {
		t.Fatalf("patty = %s, want 4", d.Qty)
	}
	if d := findDeduction(t, ds, "potato"); !d.Qty.Equal(dec("0.4")) {
		t.Fatalf("potato = %s, want 0.4", d.Qty)
	}
}

func TestBuildDeductions_NoRecipeIsNotAnError(t *testing.T) {
	items := []domain.OrderItem{{ID: "soda", Quantity: 5}}
	if ds := BuildDeductions(items, testRecipes()); ds != nil {
		t.Fatalf("got %v, want no deductions", ds)
	}
}

func TestBuildRefundDeductions_CapsAtOrderedQty(t *testing.T) {
	items := []domain.OrderItem{{ID: "burger", Quantity: 2}}
	refund := []RefundItem{{ProductID: "burger", Qty: 5}}

	ds := BuildRefundDeductions(items, refund, testRecipes())
	if d := findDeduction(t, ds, "patty"); !d.Qty.Equal(dec("2")) {
		t.Fatalf("patty = %s, want 2 (capped at ordered qty)", d.Qty)
	}
}

func TestBuildRefundDeductions_IgnoresUnknownItems(t *testing.T) {
	items := []domain.OrderItem{{ID: "burger", Quantity: 2}}
	refund := []RefundItem{{ProductID: "pizza", Qty: 1}}

	if ds := BuildRefundDeductions(items, refund, testRecipes()); ds != nil {
		t.Fatalf("got %v, want no deductions", ds)
	}
}

func TestValidate_Shortage(t *testing.T) {
	// Scenario: 2x burger, recipe needs 1 patty each, only 1 patty on hand.
	items := []domain.OrderItem{{ID: "burger", Quantity: 2}}
	recipes := []domain.Recipe{
		{ID: "r1", ProductID: "burger", Lines: []domain.RecipeLine{{IngredientID: "patty", Qty: dec("1")}}},
	}
	ingredients := []domain.Ingredient{
		{ID: "patty", Name: "Beef Patty", Unit: enum.UnitPiece, OnHand: dec("1")},
	}

	v := Validate(items, recipes, ingredients)
	if v.OK {
		t.Fatal("expected validation to fail")
	}
	if len(v.Shortages) != 1 {
		t.Fatalf("got %d shortages, want 1", len(v.Shortages))
	}
	s := v.Shortages[0]
	if !s.Required.Equal(dec("2")) || !s.Available.Equal(dec("1")) || !s.Deficit.Equal(dec("1")) {
		t.Fatalf("shortage = %+v, want required=2 available=1 deficit=1", s)
	}
}

func TestValidate_OKWhenStocked(t *testing.T) {
	items := []domain.OrderItem{{ID: "burger", Quantity: 2}}
	ingredients := []domain.Ingredient{
		{ID: "patty", Name: "Beef Patty", Unit: enum.UnitPiece, OnHand: dec("10")},
		{ID: "bun", Name: "Bun", Unit: enum.UnitPiece, OnHand: dec("10")},
	}

	v := Validate(items, testRecipes(), ingredients)
	if !v.OK {
		t.Fatalf("expected ok, got shortages %v", v.Shortages)
	}
	if len(v.Deductions) != 2 {
		t.Fatalf("got %d deductions, want 2", len(v.Deductions))
	}
}

func TestValidate_UnknownIngredientCountsAsZeroStock(t *testing.T) {
	items := []domain.OrderItem{{ID: "burger", Quantity: 1}}
	recipes := []domain.Recipe{
		{ID: "r1", ProductID: "burger", Lines: []domain.RecipeLine{{IngredientID: "ghost", Qty: dec("1")}}},
	}

	v := Validate(items, recipes, nil)
	if v.OK {
		t.Fatal("expected shortage for unknown ingredient")
	}
	if v.Shortages[0].Name != "Unknown ingredient" {
		t.Fatalf("name = %q", v.Shortages[0].Name)
	}
}

func TestValidate_NoDeductionsIsOK(t *testing.T) {
	v := Validate([]domain.OrderItem{{ID: "soda", Quantity: 1}}, testRecipes(), nil)
	if !v.OK {
		t.Fatal("order with no recipe-backed items must validate")
	}
}

func TestFormatQty(t *testing.T) {
	if got := FormatQty(dec("2"), "pcs"); got != "2 pcs" {
		t.Fatalf("got %q", got)
	}
	if got := FormatQty(dec("0.25"), "kg"); got != "0.25 kg" {
		t.Fatalf("got %q", got)
	}
}

func TestShortageMessage(t *testing.T) {
	msg := ShortageMessage([]Shortage{
		{Name: "Beef Patty", Unit: "pcs", Required: dec("2"), Available: dec("1")},
	})
	want := "Beef Patty: need 2 pcs, on hand 1 pcs"
	if msg != want {
		t.Fatalf("got %q, want %q", msg, want)
	}
	if ShortageMessage(nil) != "" {
		t.Fatal("empty shortage list must render empty message")
	}
}

func TestDeductionNote(t *testing.T) {
	ingredients := []domain.Ingredient{{ID: "patty", Name: "Beef Patty", Unit: "pcs"}}
	note := DeductionNote(ingredients, []Deduction{{IngredientID: "patty", Qty: dec("2")}}, "ORD-001")
	want := "Inventory deducted for ORD-001: Beef Patty (-2 pcs)."
	if note != want {
		t.Fatalf("got %q, want %q", note, want)
	}

	if got := DeductionNote(nil, nil, "ORD-001"); got != "Inventory checked for ORD-001." {
		t.Fatalf("got %q", got)
	}
}
