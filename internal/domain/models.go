package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/enum"
)

// Actor identifies the authenticated staff member performing an operation.
// The engine never authenticates; it only consumes this identity.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// AuditEntry is one record in an order's append-only audit ledger.
// The JSON shape (id, action, note, at) is an external contract relied on
// by reporting; do not rename fields.
type AuditEntry struct {
	ID     string    `json:"id"`
	Action string    `json:"action"`
	Note   string    `json:"note"`
	At     time.Time `json:"at"`
}

// BundleItem is a sub-item of a composite (bundle) line item. Bundle
// sub-items are informational for pricing but drive recipe expansion.
type BundleItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderItem is a top-level line item. Line items are immutable once the
// order is placed; replacement tickets are the only remake path.
type OrderItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Modifiers   []string        `json:"modifiers,omitempty"`
	Note        string          `json:"note,omitempty"`
	BundleItems []BundleItem    `json:"bundle_items,omitempty"`
}

// Order is the central aggregate: the order entity plus its state machine.
type Order struct {
	ID        string          `json:"id"`
	OrderNo   string          `json:"order_no"`
	Source    string          `json:"source"`
	OrderType string          `json:"order_type"`
	Table     string          `json:"table,omitempty"`
	Items     []OrderItem     `json:"items"`
	Note      string          `json:"note,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	PlacedAt  time.Time       `json:"placed_at"`
	Status    string          `json:"status"`

	// Payment attestation. Recorded, not processed: there is no gateway.
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PaymentAmount    decimal.Decimal `json:"payment_amount"`
	PaymentChange    decimal.Decimal `json:"payment_change"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	PaymentPayer     string          `json:"payment_payer,omitempty"`
	ProcessedBy      *Actor          `json:"processed_by,omitempty"`

	ReplacementStatus string `json:"replacement_status"`
	ReplacementCount  int    `json:"replacement_count"`

	AuditLog []AuditEntry `json:"audit_log"`
}

// IsPaymentCaptured reports whether any PAYMENT audit entry exists.
// This is the one-way cancellation latch: it survives all later status
// changes, unlike a check against the current status.
func (o *Order) IsPaymentCaptured() bool {
	for _, e := range o.AuditLog {
		if e.Action == enum.AuditActionPayment {
			return true
		}
	}
	return false
}

// Item returns the top-level line item with the given product id, or nil.
func (o *Order) Item(productID string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == productID {
			return &o.Items[i]
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand outside the engine's lock.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	for i, it := range o.Items {
		ci := it
		ci.Modifiers = append([]string(nil), it.Modifiers...)
		ci.BundleItems = append([]BundleItem(nil), it.BundleItems...)
		c.Items[i] = ci
	}
	c.AuditLog = append([]AuditEntry(nil), o.AuditLog...)
	if o.ProcessedBy != nil {
		pb := *o.ProcessedBy
		c.ProcessedBy = &pb
	}
	return &c
}

// Ingredient is a stock-tracked raw material.
type Ingredient struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	OnHand       decimal.Decimal `json:"on_hand"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// LowStock reports whether on-hand has reached the reorder level.
func (i *Ingredient) LowStock() bool {
	return i.OnHand.LessThanOrEqual(i.ReorderLevel)
}

// RecipeLine is one ingredient consumption per serving of a product.
type RecipeLine struct {
	IngredientID string          `json:"ingredient_id"`
	Qty          decimal.Decimal `json:"qty"`
}

// Recipe maps a sellable product to its ingredient consumption.
// At most one active recipe per product.
type Recipe struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	Lines     []RecipeLine `json:"lines"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// StockEntry is one row in the inventory ledger: a manual adjustment or an
// order-driven deduction/restock. Append-only.
type StockEntry struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	Type         string          `json:"type"`
	Qty          decimal.Decimal `json:"qty"`
	Reason       string          `json:"reason"`
	At           time.Time       `json:"at"`
	OrderID      string          `json:"order_id,omitempty"`
}

// ReplacementItem is one requested remake line; qty is capped at the
// originally ordered quantity.
type ReplacementItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
}

// ReplacementRequest is a cashier-raised remake request awaiting admin review.
type ReplacementRequest struct {
	ID          string            `json:"id"`
	OrderID     string            `json:"order_id"`
	Items       []ReplacementItem `json:"items"`
	Reason      string            `json:"reason"`
	Status      string            `json:"status"`
	RequestedBy Actor             `json:"requested_by"`
	RequestedAt time.Time         `json:"requested_at"`
	ReviewedBy  *Actor            `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty"`
	ReviewNote  string            `json:"review_note,omitempty"`
}

// ReplacementTicket is a kitchen work item spawned by an approved
// replacement request. Its status is independent of the parent order's.
type ReplacementTicket struct {
	ID        string            `json:"id"`
	OrderID   string            `json:"order_id"`
	OrderNo   string            `json:"order_no"`
	Items     []ReplacementItem `json:"items"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// CashAdjustmentRequest is a cashier-reported drawer shortage or overage
// awaiting admin review.
type CashAdjustmentRequest struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	RelatedOrderID string          `json:"related_order_id,omitempty"`
	Status         string          `json:"status"`
	RequestedBy    Actor           `json:"requested_by"`
	RequestedAt    time.Time       `json:"requested_at"`
	ReviewedBy     *Actor          `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	ReviewNote     string          `json:"review_note,omitempty"`
}

// CashAdjustment is the immutable record created when a request is approved.
type CashAdjustment struct {
	ID             string          `json:"id"`
	RequestID      string          `json:"request_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	RelatedOrderID string          `json:"related_order_id,omitempty"`
	ProcessedBy    Actor           `json:"processed_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CashAuditEntry is one row in the cash workflow's append-only audit log,
// parallel to the order audit ledger but scoped to cash adjustments.
type CashAuditEntry struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	Action    string    `json:"action"`
	Note      string    `json:"note"`
	By        Actor     `json:"by"`
	At        time.Time `json:"at"`
}
