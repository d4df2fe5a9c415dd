package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lumina-pos/api/internal/inventory"
)

// Not-found sentinels.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrTicketNotFound     = errors.New("ticket not found")
)

// ValidationError reports malformed input, scoped to a single field.
// Always recoverable; the engine state is untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// GuardError reports an operation whose precondition does not hold: wrong
// current status, duplicate pending request, or a latched payment. The
// Reason carries enough context for the caller to explain the rejection.
type GuardError struct {
	Op     string
	Reason string
}

func (e *GuardError) Error() string {
	return e.Op + ": " + e.Reason
}

// PermissionError reports a role policy violation.
type PermissionError struct {
	Op       string
	Role     string
	Required []string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: role %s not permitted (requires %s)",
		e.Op, e.Role, strings.Join(e.Required, " or "))
}

// ShortfallError reports insufficient stock found during payment-capture
// validation. It carries the full shortage list so the caller can render
// an actionable message per ingredient.
type ShortfallError struct {
	Shortages []inventory.Shortage
}

func (e *ShortfallError) Error() string {
	return "insufficient stock: " + inventory.ShortageMessage(e.Shortages)
}
