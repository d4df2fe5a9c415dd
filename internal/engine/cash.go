package engine

import (
	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/enum"
)

func (e *Engine) appendCashAudit(requestID, action, note string, by domain.Actor) {
	e.cashAudit = append([]domain.CashAuditEntry{{
		ID:        newID(),
		RequestID: requestID,
		Action:    action,
		Note:      note,
		By:        by,
		At:        now(),
	}}, e.cashAudit...)
}

// RequestCashAdjustment reports a drawer shortage or overage for admin
// review. The related order id is a loose reference and is not required to
// resolve to a known order.
func (e *Engine) RequestCashAdjustment(adjType string, amount decimal.Decimal, reason, relatedOrderID string, actor domain.Actor) (domain.CashAdjustmentRequest, error) {
	if err := authorize(OpRequestCash, actor); err != nil {
		return domain.CashAdjustmentRequest{}, err
	}
	if adjType != enum.CashTypeShortage && adjType != enum.CashTypeOverage {
		return domain.CashAdjustmentRequest{}, &ValidationError{Field: "type", Reason: "must be SHORTAGE or OVERAGE"}
	}
	if !amount.IsPositive() {
		return domain.CashAdjustmentRequest{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	reason = domain.SanitizeNote(reason)
	if reason == "" {
		return domain.CashAdjustmentRequest{}, &ValidationError{Field: "reason", Reason: "adjustment reason is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	req := &domain.CashAdjustmentRequest{
		ID:             newID(),
		Type:           adjType,
		Amount:         amount,
		Reason:         reason,
		RelatedOrderID: relatedOrderID,
		Status:         enum.RequestStatusPending,
		RequestedBy:    actor,
		RequestedAt:    now(),
	}
	e.cashRequests = append([]*domain.CashAdjustmentRequest{req}, e.cashRequests...)
	e.appendCashAudit(req.ID, enum.CashAuditRequested, reason, actor)
	return cloneCashRequest(req), nil
}

// ReviewCashAdjustment settles a pending cash request. Approval mints the
// immutable CashAdjustment record; both outcomes land in the cash audit
// trail.
func (e *Engine) ReviewCashAdjustment(requestID string, approve bool, note string, actor domain.Actor) (domain.CashAdjustmentRequest, error) {
	if err := authorize(OpReviewCash, actor); err != nil {
		return domain.CashAdjustmentRequest{}, err
	}
	note = domain.SanitizeNote(note)

	e.mu.Lock()
	defer e.mu.Unlock()

	var req *domain.CashAdjustmentRequest
	for _, r := range e.cashRequests {
		if r.ID == requestID {
			req = r
			break
		}
	}
	if req == nil {
		return domain.CashAdjustmentRequest{}, ErrRequestNotFound
	}
	if req.Status != enum.RequestStatusPending {
		return domain.CashAdjustmentRequest{}, &GuardError{
			Op:     OpReviewCash,
			Reason: "request is already " + req.Status,
		}
	}

	reviewedBy := actor
	reviewedAt := now()
	req.ReviewedBy = &reviewedBy
	req.ReviewedAt = &reviewedAt
	req.ReviewNote = note

	if approve {
		req.Status = enum.RequestStatusApproved
		e.cashAdjustments = append([]domain.CashAdjustment{{
			ID:             newID(),
			RequestID:      req.ID,
			Type:           req.Type,
			Amount:         req.Amount,
			Reason:         req.Reason,
			RelatedOrderID: req.RelatedOrderID,
			ProcessedBy:    actor,
			CreatedAt:      now(),
		}}, e.cashAdjustments...)
		e.appendCashAudit(req.ID, enum.CashAuditApproved, note, actor)
	} else {
		req.Status = enum.RequestStatusRejected
		e.appendCashAudit(req.ID, enum.CashAuditRejected, note, actor)
	}
	return cloneCashRequest(req), nil
}
