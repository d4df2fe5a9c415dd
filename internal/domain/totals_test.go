package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/enum"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	items := []OrderItem{
		{ID: "p1", Name: "Burger", UnitPrice: dec("8.50"), Quantity: 2},
		{ID: "p2", Name: "Fries", UnitPrice: dec("3.00"), Quantity: 1},
	}

	got := CalculateTotals(items, DefaultTaxRate)

	if !got.Subtotal.Equal(dec("20.00")) {
		t.Fatalf("subtotal = %s, want 20.00", got.Subtotal)
	}
	// 20.00 * 0.0825 = 1.65
	if !got.Tax.Equal(dec("1.65")) {
		t.Fatalf("tax = %s, want 1.65", got.Tax)
	}
	if !got.Total.Equal(got.Subtotal.Add(got.Tax)) {
		t.Fatalf("total = %s, want subtotal+tax = %s", got.Total, got.Subtotal.Add(got.Tax))
	}
}

func TestCalculateTotals_BundleSubItemsNotPriced(t *testing.T) {
	items := []OrderItem{
		{
			ID: "combo1", Name: "Family Box", UnitPrice: dec("25.00"), Quantity: 1,
			BundleItems: []BundleItem{
				{ID: "p1", Name: "Burger", Quantity: 2},
				{ID: "p2", Name: "Fries", Quantity: 2},
			},
		},
	}

	got := CalculateTotals(items, decimal.Zero)
	if !got.Subtotal.Equal(dec("25.00")) {
		t.Fatalf("subtotal = %s, want 25.00 (bundle sub-items must not be priced)", got.Subtotal)
	}
}

func TestCalculateTotals_Empty(t *testing.T) {
	got := CalculateTotals(nil, DefaultTaxRate)
	if !got.Total.IsZero() {
		t.Fatalf("total = %s, want 0", got.Total)
	}
}

func TestItemCount_ExpandsBundles(t *testing.T) {
	items := []OrderItem{
		{ID: "p1", Quantity: 3},
		{
			ID: "combo1", Quantity: 2,
			BundleItems: []BundleItem{{ID: "p2", Quantity: 2}, {ID: "p3", Quantity: 1}},
		},
	}
	if got := ItemCount(items); got != 9 {
		t.Fatalf("ItemCount = %d, want 9", got)
	}
}

func TestIsPaymentCaptured(t *testing.T) {
	o := &Order{}
	if o.IsPaymentCaptured() {
		t.Fatal("new order must not report a captured payment")
	}

	o.AuditLog = append(o.AuditLog, AuditEntry{ID: "a1", Action: enum.AuditActionStatus, Note: "Sent to kitchen."})
	if o.IsPaymentCaptured() {
		t.Fatal("STATUS entry must not count as a payment")
	}

	o.AuditLog = append(o.AuditLog, AuditEntry{ID: "a2", Action: enum.AuditActionPayment, Note: "Payment captured."})
	if !o.IsPaymentCaptured() {
		t.Fatal("PAYMENT entry must latch payment capture")
	}

	// The latch survives later entries and status changes.
	o.Status = enum.OrderStatusCompleted
	o.AuditLog = append(o.AuditLog, AuditEntry{ID: "a3", Action: enum.AuditActionStatus, Note: "Order completed."})
	if !o.IsPaymentCaptured() {
		t.Fatal("payment latch must survive subsequent mutations")
	}
}

func TestOrderClone_Independent(t *testing.T) {
	o := &Order{
		ID:    "o1",
		Items: []OrderItem{{ID: "p1", Quantity: 1, Modifiers: []string{"no onion"}}},
		AuditLog: []AuditEntry{
			{ID: "a1", Action: enum.AuditActionStatus},
		},
		ProcessedBy: &Actor{ID: "u1", Name: "Dana", Role: enum.UserRoleCashier},
	}

	c := o.Clone()
	c.Items[0].Modifiers[0] = "extra onion"
	c.AuditLog[0].Action = enum.AuditActionVoid
	c.ProcessedBy.Name = "changed"

	if o.Items[0].Modifiers[0] != "no onion" {
		t.Fatal("clone shares item modifiers with original")
	}
	if o.AuditLog[0].Action != enum.AuditActionStatus {
		t.Fatal("clone shares audit log with original")
	}
	if o.ProcessedBy.Name != "Dana" {
		t.Fatal("clone shares processed_by with original")
	}
}
