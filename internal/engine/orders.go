package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/enum"
	"github.com/lumina-pos/api/internal/inventory"
)

// PlaceOrderBundleItem is a composite sub-item in a placement request.
type PlaceOrderBundleItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderItem is one line item in a placement request.
type PlaceOrderItem struct {
	ProductID   string                 `json:"product_id"`
	Name        string                 `json:"name"`
	UnitPrice   decimal.Decimal        `json:"unit_price"`
	Quantity    int                    `json:"quantity"`
	Modifiers   []string               `json:"modifiers,omitempty"`
	Note        string                 `json:"note,omitempty"`
	BundleItems []PlaceOrderBundleItem `json:"bundle_items,omitempty"`
}

// PlaceOrderRequest creates a new order. A client-supplied ID makes the call
// idempotent: re-submitting an existing ID returns the stored order unchanged.
type PlaceOrderRequest struct {
	ID        string           `json:"id,omitempty"`
	OrderNo   string           `json:"order_no,omitempty"`
	Source    string           `json:"source"`
	OrderType string           `json:"order_type"`
	Table     string           `json:"table,omitempty"`
	Note      string           `json:"note,omitempty"`
	Hold      bool             `json:"hold,omitempty"`
	Items     []PlaceOrderItem `json:"items"`
}

// Payment is the attestation recorded at capture time. Nothing is charged;
// the counter has already taken the money.
type Payment struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Change    decimal.Decimal `json:"change"`
	Reference string          `json:"reference,omitempty"`
	Payer     string          `json:"payer,omitempty"`
}

func validPaymentMethod(m string) bool {
	switch m {
	case enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodQR, enum.PaymentMethodTransfer:
		return true
	}
	return false
}

func normalizePayment(p Payment) (Payment, error) {
	if !validPaymentMethod(p.Method) {
		return Payment{}, &ValidationError{Field: "payment_method", Reason: "unknown payment method"}
	}
	if !p.Amount.IsPositive() {
		return Payment{}, &ValidationError{Field: "payment_amount", Reason: "must be positive"}
	}
	if p.Change.IsNegative() {
		return Payment{}, &ValidationError{Field: "payment_change", Reason: "cannot be negative"}
	}
	if p.Reference != "" {
		ref := domain.NormalizeReference(p.Reference)
		if !domain.IsValidReference(ref) {
			return Payment{}, &ValidationError{Field: "payment_reference", Reason: "must be 4-20 characters of A-Z, 0-9 or -"}
		}
		p.Reference = ref
	}
	p.Payer = domain.SanitizeText(p.Payer)
	return p, nil
}

func buildOrderItems(items []PlaceOrderItem) ([]domain.OrderItem, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}
	out := make([]domain.OrderItem, len(items))
	for i, it := range items {
		if it.ProductID == "" || strings.TrimSpace(it.Name) == "" {
			return nil, &ValidationError{Field: "items", Reason: "every item needs a product id and name"}
		}
		if it.Quantity <= 0 {
			return nil, &ValidationError{Field: "items", Reason: "item quantity must be positive"}
		}
		if it.UnitPrice.IsNegative() {
			return nil, &ValidationError{Field: "items", Reason: "unit price cannot be negative"}
		}
		bundle := make([]domain.BundleItem, 0, len(it.BundleItems))
		for _, b := range it.BundleItems {
			if b.ProductID == "" || b.Quantity <= 0 {
				return nil, &ValidationError{Field: "items", Reason: "bundle sub-items need a product id and positive quantity"}
			}
			bundle = append(bundle, domain.BundleItem{ID: b.ProductID, Name: b.Name, Quantity: b.Quantity})
		}
		if len(bundle) == 0 {
			bundle = nil
		}
		out[i] = domain.OrderItem{
			ID:          it.ProductID,
			Name:        domain.SanitizeText(it.Name),
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Modifiers:   append([]string(nil), it.Modifiers...),
			Note:        domain.SanitizeNote(it.Note),
			BundleItems: bundle,
		}
	}
	return out, nil
}

// PlaceOrder creates an order in PENDING_PAYMENT (or HOLD when requested).
// Placement never touches stock; availability is checked at payment capture.
func (e *Engine) PlaceOrder(req PlaceOrderRequest, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpPlaceOrder, actor); err != nil {
		return nil, err
	}

	switch req.Source {
	case enum.OrderSourceKiosk, enum.OrderSourceStaff:
	default:
		return nil, &ValidationError{Field: "source", Reason: "unknown order source"}
	}
	switch req.OrderType {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeout:
	default:
		return nil, &ValidationError{Field: "order_type", Reason: "unknown order type"}
	}
	items, err := buildOrderItems(req.Items)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if req.ID != "" {
		if existing, ok := e.ordersByID[req.ID]; ok {
			return existing.Clone(), nil
		}
	}

	totals := domain.CalculateTotals(items, e.taxRate)
	status := enum.OrderStatusPendingPayment
	if req.Hold {
		status = enum.OrderStatusHold
	}
	id := req.ID
	if id == "" {
		id = newID()
	}
	orderNo := req.OrderNo
	if orderNo == "" {
		orderNo = e.nextOrderNo()
	}

	o := &domain.Order{
		ID:                id,
		OrderNo:           orderNo,
		Source:            req.Source,
		OrderType:         req.OrderType,
		Table:             domain.SanitizeText(req.Table),
		Items:             items,
		Note:              domain.SanitizeNote(req.Note),
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		Total:             totals.Total,
		PlacedAt:          now(),
		Status:            status,
		ReplacementStatus: enum.ReplacementStatusNone,
	}
	e.orders = append([]*domain.Order{o}, e.orders...)
	e.ordersByID[o.ID] = o
	return o.Clone(), nil
}

func statusGuard(op string, o *domain.Order, allowed ...string) error {
	for _, s := range allowed {
		if o.Status == s {
			return nil
		}
	}
	return &GuardError{
		Op:     op,
		Reason: fmt.Sprintf("order %s is %s, expected %s", o.OrderNo, o.Status, strings.Join(allowed, " or ")),
	}
}

// capture validates payment and stock, then atomically records the payment,
// deducts ingredients, and optionally routes the order onward. The audit
// ledger gains the PAYMENT entry first, then any deduction note, then the
// routing STATUS entry.
func (e *Engine) capture(op string, orderID string, p Payment, actor domain.Actor, next, routeNote string) (*domain.Order, error) {
	if err := authorize(OpCapturePayment, actor); err != nil {
		return nil, err
	}
	p, err := normalizePayment(p)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := statusGuard(op, o, enum.OrderStatusPendingPayment); err != nil {
		return nil, err
	}
	val := inventory.Validate(o.Items, e.recipeView(), e.ingredientView())
	if !val.OK {
		return nil, &ShortfallError{Shortages: val.Shortages}
	}

	// All guards passed; from here the whole effect is applied.
	o.Status = enum.OrderStatusPaid
	o.PaymentMethod = p.Method
	o.PaymentAmount = p.Amount
	o.PaymentChange = p.Change
	o.PaymentReference = p.Reference
	o.PaymentPayer = p.Payer
	processedBy := actor
	o.ProcessedBy = &processedBy
	appendAudit(o, enum.AuditActionPayment, "Payment captured at counter ("+p.Method+").")

	if len(val.Deductions) > 0 {
		note := inventory.DeductionNote(e.ingredientView(), val.Deductions, o.OrderNo)
		e.applyStock(val.Deductions, enum.StockEntryOut, "Order "+o.OrderNo+" payment", o.ID)
		appendAudit(o, enum.AuditActionStatus, note)
	}

	if next != "" {
		o.Status = next
		appendAudit(o, enum.AuditActionStatus, routeNote)
	}
	return o.Clone(), nil
}

// MarkPaid captures payment and leaves the order in PAID for a later
// explicit send to the kitchen.
func (e *Engine) MarkPaid(orderID string, p Payment, actor domain.Actor) (*domain.Order, error) {
	return e.capture(OpCapturePayment, orderID, p, actor, "", "")
}

// CaptureAndSendToKitchen captures payment and immediately routes the order
// to SENT_TO_KITCHEN, the default counter flow.
func (e *Engine) CaptureAndSendToKitchen(orderID string, p Payment, actor domain.Actor) (*domain.Order, error) {
	return e.capture(OpCapturePayment, orderID, p, actor,
		enum.OrderStatusSentToKitchen, "Auto-sent to kitchen after payment.")
}

// CaptureAndPrepare captures payment and routes straight to PREPARING, used
// when the kitchen has already started on a called-in order.
func (e *Engine) CaptureAndPrepare(orderID string, p Payment, actor domain.Actor) (*domain.Order, error) {
	return e.capture(OpCapturePayment, orderID, p, actor,
		enum.OrderStatusPreparing, "Auto-started prep after payment.")
}

// SendToKitchen explicitly routes an order to the kitchen. Unpaid orders
// (PENDING_PAYMENT or HOLD) may be fired before capture; they settle at
// pickup.
func (e *Engine) SendToKitchen(orderID string, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpSendToKitchen, actor); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := statusGuard(OpSendToKitchen, o, enum.OrderStatusPendingPayment, enum.OrderStatusPaid, enum.OrderStatusHold); err != nil {
		return nil, err
	}
	o.Status = enum.OrderStatusSentToKitchen
	appendAudit(o, enum.AuditActionStatus, "Sent to kitchen.")
	return o.Clone(), nil
}

// StartPreparing moves a kitchen order to PREPARING. Kitchen progress
// transitions are high-volume and deliberately not audited.
func (e *Engine) StartPreparing(orderID string, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpStartPreparing, actor); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := statusGuard(OpStartPreparing, o, enum.OrderStatusSentToKitchen); err != nil {
		return nil, err
	}
	o.Status = enum.OrderStatusPreparing
	return o.Clone(), nil
}

// MarkReady moves a PREPARING order to READY_FOR_PICKUP.
func (e *Engine) MarkReady(orderID string, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpMarkReady, actor); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := statusGuard(OpMarkReady, o, enum.OrderStatusPreparing); err != nil {
		return nil, err
	}
	o.Status = enum.OrderStatusReadyForPickup
	return o.Clone(), nil
}

// CloseOrder completes a READY_FOR_PICKUP order at handoff.
func (e *Engine) CloseOrder(orderID string, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpCloseOrder, actor); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := statusGuard(OpCloseOrder, o, enum.OrderStatusReadyForPickup); err != nil {
		return nil, err
	}
	o.Status = enum.OrderStatusCompleted
	appendAudit(o, enum.AuditActionStatus, "Order completed.")
	return o.Clone(), nil
}

// CancelOrder cancels an order that has not reached a terminal status and
// has no captured payment. The captured-payment latch is permanent: once a
// PAYMENT audit entry exists, cancellation is blocked regardless of the
// current status, and refunds are the only way back.
func (e *Engine) CancelOrder(orderID, reason string, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpCancelOrder, actor); err != nil {
		return nil, err
	}
	reason = domain.SanitizeNote(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Reason: "cancellation reason is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == enum.OrderStatusCompleted || o.Status == enum.OrderStatusCancelled {
		return nil, &GuardError{Op: OpCancelOrder, Reason: fmt.Sprintf("order %s is already %s", o.OrderNo, o.Status)}
	}
	if o.IsPaymentCaptured() {
		return nil, &GuardError{Op: OpCancelOrder, Reason: fmt.Sprintf("order %s has a captured payment; refund instead", o.OrderNo)}
	}
	o.Status = enum.OrderStatusCancelled
	appendAudit(o, enum.AuditActionCancel, reason)
	return o.Clone(), nil
}

// UpdateNote replaces the order-level note. Notes are mutable metadata and
// not audited; line items never change after placement.
func (e *Engine) UpdateNote(orderID, note string, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpUpdateNote, actor); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	o.Note = domain.SanitizeNote(note)
	return o.Clone(), nil
}

// RefundOrder restocks the refunded items' ingredients and appends a REFUND
// audit entry. Only orders with a captured payment can be refunded; the
// order's status is left alone.
func (e *Engine) RefundOrder(orderID string, items []inventory.RefundItem, reason string, actor domain.Actor) (*domain.Order, error) {
	if err := authorize(OpRefundOrder, actor); err != nil {
		return nil, err
	}
	reason = domain.SanitizeNote(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Reason: "refund reason is required"}
	}
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Reason: "refund must name at least one item"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == enum.OrderStatusCancelled {
		return nil, &GuardError{Op: OpRefundOrder, Reason: fmt.Sprintf("order %s is cancelled", o.OrderNo)}
	}
	if !o.IsPaymentCaptured() {
		return nil, &GuardError{Op: OpRefundOrder, Reason: fmt.Sprintf("order %s has no captured payment", o.OrderNo)}
	}
	for _, it := range items {
		line := o.Item(it.ProductID)
		if line == nil {
			return nil, &ValidationError{Field: "items", Reason: "product " + it.ProductID + " is not on the order"}
		}
		if it.Qty <= 0 {
			return nil, &ValidationError{Field: "items", Reason: "refund quantity must be positive"}
		}
		if it.Qty > line.Quantity {
			return nil, &ValidationError{Field: "items", Reason: fmt.Sprintf("refund quantity for %s exceeds ordered quantity", it.ProductID)}
		}
	}

	restock := inventory.BuildRefundDeductions(o.Items, items, e.recipeView())
	if len(restock) > 0 {
		e.applyStock(restock, enum.StockEntryIn, "Order "+o.OrderNo+" refund", o.ID)
	}
	appendAudit(o, enum.AuditActionRefund, reason)
	return o.Clone(), nil
}

// ValidateOrderStock dry-runs inventory validation for an order without
// touching any state.
func (e *Engine) ValidateOrderStock(orderID string) (inventory.Validation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return inventory.Validation{}, err
	}
	return inventory.Validate(o.Items, e.recipeView(), e.ingredientView()), nil
}
