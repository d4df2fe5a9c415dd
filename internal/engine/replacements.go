package engine

import (
	"fmt"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/enum"
)

// ReplacementItemInput selects an order line and quantity for remake.
type ReplacementItemInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// RequestReplacement raises a remake request for review. One pending request
// per order; the order's replacement latch moves to PENDING until reviewed.
func (e *Engine) RequestReplacement(orderID string, items []ReplacementItemInput, reason string, actor domain.Actor) (domain.ReplacementRequest, error) {
	if err := authorize(OpRequestReplace, actor); err != nil {
		return domain.ReplacementRequest{}, err
	}
	reason = domain.SanitizeNote(reason)
	if reason == "" {
		return domain.ReplacementRequest{}, &ValidationError{Field: "reason", Reason: "replacement reason is required"}
	}
	if len(items) == 0 {
		return domain.ReplacementRequest{}, &ValidationError{Field: "items", Reason: "replacement must name at least one item"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(orderID)
	if err != nil {
		return domain.ReplacementRequest{}, err
	}
	if o.Status != enum.OrderStatusCompleted {
		return domain.ReplacementRequest{}, &GuardError{
			Op:     OpRequestReplace,
			Reason: fmt.Sprintf("order %s is %s; replacements apply to completed orders", o.OrderNo, o.Status),
		}
	}
	if o.ReplacementStatus == enum.ReplacementStatusPending {
		return domain.ReplacementRequest{}, &GuardError{
			Op:     OpRequestReplace,
			Reason: fmt.Sprintf("order %s already has a pending replacement request", o.OrderNo),
		}
	}

	reqItems := make([]domain.ReplacementItem, 0, len(items))
	for _, it := range items {
		line := o.Item(it.ProductID)
		if line == nil {
			return domain.ReplacementRequest{}, &ValidationError{Field: "items", Reason: "product " + it.ProductID + " is not on the order"}
		}
		if it.Qty <= 0 {
			return domain.ReplacementRequest{}, &ValidationError{Field: "items", Reason: "replacement quantity must be positive"}
		}
		if it.Qty > line.Quantity {
			return domain.ReplacementRequest{}, &ValidationError{
				Field:  "items",
				Reason: fmt.Sprintf("replacement quantity %d exceeds ordered quantity %d for %s", it.Qty, line.Quantity, line.Name),
			}
		}
		reqItems = append(reqItems, domain.ReplacementItem{ProductID: it.ProductID, Name: line.Name, Qty: it.Qty})
	}

	req := &domain.ReplacementRequest{
		ID:          newID(),
		OrderID:     o.ID,
		Items:       reqItems,
		Reason:      reason,
		Status:      enum.RequestStatusPending,
		RequestedBy: actor,
		RequestedAt: now(),
	}
	e.replacementRequests = append([]*domain.ReplacementRequest{req}, e.replacementRequests...)
	o.ReplacementStatus = enum.ReplacementStatusPending
	appendAudit(o, enum.AuditActionStatus, "Replacement requested: "+reason)
	return cloneReplacementRequest(req), nil
}

// ReviewReplacement settles a pending request. Approval spawns a kitchen
// ticket and bumps the order's replacement count. Rejection restores the
// order's latch to APPROVED when an earlier request was approved, NONE
// otherwise.
func (e *Engine) ReviewReplacement(requestID string, approve bool, note string, actor domain.Actor) (domain.ReplacementRequest, error) {
	if err := authorize(OpReviewReplace, actor); err != nil {
		return domain.ReplacementRequest{}, err
	}
	note = domain.SanitizeNote(note)

	e.mu.Lock()
	defer e.mu.Unlock()

	var req *domain.ReplacementRequest
	for _, r := range e.replacementRequests {
		if r.ID == requestID {
			req = r
			break
		}
	}
	if req == nil {
		return domain.ReplacementRequest{}, ErrRequestNotFound
	}
	if req.Status != enum.RequestStatusPending {
		return domain.ReplacementRequest{}, &GuardError{
			Op:     OpReviewReplace,
			Reason: "request is already " + req.Status,
		}
	}

	reviewedBy := actor
	reviewedAt := now()
	req.ReviewedBy = &reviewedBy
	req.ReviewedAt = &reviewedAt
	req.ReviewNote = note

	o := e.ordersByID[req.OrderID]
	if approve {
		req.Status = enum.RequestStatusApproved
		if o != nil {
			o.ReplacementStatus = enum.ReplacementStatusApproved
			o.ReplacementCount++
		}
		t := &domain.ReplacementTicket{
			ID:        newID(),
			OrderID:   req.OrderID,
			Items:     append([]domain.ReplacementItem(nil), req.Items...),
			Status:    enum.TicketStatusSentToKitchen,
			CreatedAt: now(),
		}
		if o != nil {
			t.OrderNo = o.OrderNo
			appendAudit(o, enum.AuditActionStatus, "Replacement approved; remake ticket sent to kitchen.")
		}
		e.replacementTickets = append([]*domain.ReplacementTicket{t}, e.replacementTickets...)
	} else {
		req.Status = enum.RequestStatusRejected
		if o != nil {
			if o.ReplacementCount > 0 {
				o.ReplacementStatus = enum.ReplacementStatusApproved
			} else {
				o.ReplacementStatus = enum.ReplacementStatusNone
			}
			appendAudit(o, enum.AuditActionStatus, "Replacement rejected.")
		}
	}
	return cloneReplacementRequest(req), nil
}

func (e *Engine) progressTicket(ticketID, from, to string, actor domain.Actor) (domain.ReplacementTicket, error) {
	if err := authorize(OpProgressTicket, actor); err != nil {
		return domain.ReplacementTicket{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.replacementTickets {
		if t.ID != ticketID {
			continue
		}
		if t.Status != from {
			return domain.ReplacementTicket{}, &GuardError{
				Op:     OpProgressTicket,
				Reason: fmt.Sprintf("ticket is %s, expected %s", t.Status, from),
			}
		}
		t.Status = to
		return cloneReplacementTicket(t), nil
	}
	return domain.ReplacementTicket{}, ErrTicketNotFound
}

// StartReplacementTicket moves a kitchen ticket to PREPARING. Ticket status
// is independent of the parent order's.
func (e *Engine) StartReplacementTicket(ticketID string, actor domain.Actor) (domain.ReplacementTicket, error) {
	return e.progressTicket(ticketID, enum.TicketStatusSentToKitchen, enum.TicketStatusPreparing, actor)
}

// MarkReplacementReady moves a kitchen ticket to READY_FOR_PICKUP.
func (e *Engine) MarkReplacementReady(ticketID string, actor domain.Actor) (domain.ReplacementTicket, error) {
	return e.progressTicket(ticketID, enum.TicketStatusPreparing, enum.TicketStatusReadyForPickup, actor)
}
