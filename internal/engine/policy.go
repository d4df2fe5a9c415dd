package engine

import (
	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/enum"
)

// Operation names, used as role policy keys and in guard/permission errors.
const (
	OpPlaceOrder       = "order.place"
	OpCapturePayment   = "order.capture_payment"
	OpSendToKitchen    = "order.send_to_kitchen"
	OpStartPreparing   = "order.start_preparing"
	OpMarkReady        = "order.mark_ready"
	OpCloseOrder       = "order.close"
	OpCancelOrder      = "order.cancel"
	OpUpdateNote       = "order.update_note"
	OpRefundOrder      = "order.refund"
	OpRequestReplace   = "replacement.request"
	OpReviewReplace    = "replacement.review"
	OpProgressTicket   = "replacement.progress_ticket"
	OpRequestCash      = "cash.request"
	OpReviewCash       = "cash.review"
	OpAdjustStock      = "inventory.adjust_stock"
	OpManageIngredient = "inventory.manage_ingredient"
	OpManageRecipe     = "inventory.manage_recipe"
)

// rolePolicy is the single authorization table: one (operation, roles)
// row per mutating operation. Requester/approver separation for the two
// approval workflows lives here, not in scattered per-call checks.
var rolePolicy = map[string][]string{
	OpPlaceOrder:     {enum.UserRoleCashier, enum.UserRoleAdmin},
	OpCapturePayment: {enum.UserRoleCashier, enum.UserRoleAdmin},
	OpSendToKitchen:  {enum.UserRoleCashier, enum.UserRoleAdmin},
	OpStartPreparing: {enum.UserRoleKitchen, enum.UserRoleAdmin},
	OpMarkReady:      {enum.UserRoleKitchen, enum.UserRoleAdmin},
	OpCloseOrder:     {enum.UserRoleCashier, enum.UserRoleAdmin},
	OpCancelOrder:    {enum.UserRoleCashier, enum.UserRoleAdmin},
	OpUpdateNote:     {enum.UserRoleCashier, enum.UserRoleAdmin},
	OpRefundOrder:    {enum.UserRoleCashier, enum.UserRoleAdmin},

	// Two-party approval: only cashiers raise, only admins review.
	OpRequestReplace: {enum.UserRoleCashier},
	OpReviewReplace:  {enum.UserRoleAdmin},
	OpProgressTicket: {enum.UserRoleKitchen, enum.UserRoleAdmin},
	OpRequestCash:    {enum.UserRoleCashier},
	OpReviewCash:     {enum.UserRoleAdmin},

	OpAdjustStock:      {enum.UserRoleAdmin},
	OpManageIngredient: {enum.UserRoleAdmin},
	OpManageRecipe:     {enum.UserRoleAdmin},
}

// authorize checks the actor's role against the policy table for op.
func authorize(op string, actor domain.Actor) error {
	required := rolePolicy[op]
	for _, role := range required {
		if actor.Role == role {
			return nil
		}
	}
	return &PermissionError{Op: op, Role: actor.Role, Required: required}
}
