// Package engine is the single logical writer over all POS state: orders,
// the inventory ledger, replacement and cash-adjustment workflows. Every
// mutating operation takes the engine lock, checks all guards before the
// first mutation, and either applies its full effect or leaves the state
// untouched. Returned aggregates are deep copies.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
)

// Engine holds all live state behind one mutex. Lists are newest-first.
type Engine struct {
	mu      sync.Mutex
	taxRate decimal.Decimal

	orders     []*domain.Order
	ordersByID map[string]*domain.Order
	orderSeq   int

	ingredients     []*domain.Ingredient
	ingredientsByID map[string]*domain.Ingredient
	recipes         []*domain.Recipe
	stockLedger     []domain.StockEntry

	replacementRequests []*domain.ReplacementRequest
	replacementTickets  []*domain.ReplacementTicket

	cashRequests    []*domain.CashAdjustmentRequest
	cashAdjustments []domain.CashAdjustment
	cashAudit       []domain.CashAuditEntry
}

func New(taxRate decimal.Decimal) *Engine {
	return &Engine{
		taxRate:         taxRate,
		ordersByID:      make(map[string]*domain.Order),
		ingredientsByID: make(map[string]*domain.Ingredient),
	}
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// appendAudit appends an entry to an order's ledger. Callers never remove
// or rewrite entries.
func appendAudit(o *domain.Order, action, note string) {
	o.AuditLog = append(o.AuditLog, domain.AuditEntry{
		ID:     newID(),
		Action: action,
		Note:   note,
		At:     now(),
	})
}

func (e *Engine) nextOrderNo() string {
	e.orderSeq++
	return fmt.Sprintf("ORD-%03d", e.orderSeq)
}

// recipeView and ingredientView materialize value slices for the pure
// inventory functions. Callers hold e.mu.
func (e *Engine) recipeView() []domain.Recipe {
	out := make([]domain.Recipe, len(e.recipes))
	for i, r := range e.recipes {
		out[i] = *r
	}
	return out
}

func (e *Engine) ingredientView() []domain.Ingredient {
	out := make([]domain.Ingredient, len(e.ingredients))
	for i, ing := range e.ingredients {
		out[i] = *ing
	}
	return out
}

func (e *Engine) findOrder(id string) (*domain.Order, error) {
	o, ok := e.ordersByID[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func cloneRecipe(r *domain.Recipe) domain.Recipe {
	c := *r
	c.Lines = append([]domain.RecipeLine(nil), r.Lines...)
	return c
}

func cloneReplacementRequest(r *domain.ReplacementRequest) domain.ReplacementRequest {
	c := *r
	c.Items = append([]domain.ReplacementItem(nil), r.Items...)
	if r.ReviewedBy != nil {
		rb := *r.ReviewedBy
		c.ReviewedBy = &rb
	}
	if r.ReviewedAt != nil {
		ra := *r.ReviewedAt
		c.ReviewedAt = &ra
	}
	return c
}

func cloneReplacementTicket(t *domain.ReplacementTicket) domain.ReplacementTicket {
	c := *t
	c.Items = append([]domain.ReplacementItem(nil), t.Items...)
	return c
}

func cloneCashRequest(r *domain.CashAdjustmentRequest) domain.CashAdjustmentRequest {
	c := *r
	if r.ReviewedBy != nil {
		rb := *r.ReviewedBy
		c.ReviewedBy = &rb
	}
	if r.ReviewedAt != nil {
		ra := *r.ReviewedAt
		c.ReviewedAt = &ra
	}
	return c
}

// ── Read API ──

// Orders returns order snapshots, newest first, optionally filtered by status.
func (e *Engine) Orders(status string) []*domain.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*domain.Order, 0, len(e.orders))
	for _, o := range e.orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, o.Clone())
	}
	return out
}

// Order returns a snapshot of one order.
func (e *Engine) Order(id string) (*domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.findOrder(id)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// Ingredients returns ingredient snapshots; lowOnly keeps only those at or
// below their reorder level.
func (e *Engine) Ingredients(lowOnly bool) []domain.Ingredient {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Ingredient, 0, len(e.ingredients))
	for _, ing := range e.ingredients {
		if lowOnly && !ing.LowStock() {
			continue
		}
		out = append(out, *ing)
	}
	return out
}

// Ingredient returns a snapshot of one ingredient.
func (e *Engine) Ingredient(id string) (domain.Ingredient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ing, ok := e.ingredientsByID[id]
	if !ok {
		return domain.Ingredient{}, ErrIngredientNotFound
	}
	return *ing, nil
}

// StockEntries returns ledger rows newest first, optionally filtered by
// ingredient.
func (e *Engine) StockEntries(ingredientID string) []domain.StockEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.StockEntry, 0, len(e.stockLedger))
	for _, entry := range e.stockLedger {
		if ingredientID != "" && entry.IngredientID != ingredientID {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Recipes returns all recipe snapshots.
func (e *Engine) Recipes() []domain.Recipe {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Recipe, len(e.recipes))
	for i, r := range e.recipes {
		out[i] = cloneRecipe(r)
	}
	return out
}

// Recipe returns the recipe for a product.
func (e *Engine) Recipe(productID string) (domain.Recipe, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, r := range e.recipes {
		if r.ProductID == productID {
			return cloneRecipe(r), nil
		}
	}
	return domain.Recipe{}, ErrRecipeNotFound
}

// ReplacementRequests returns request snapshots, optionally filtered by status.
func (e *Engine) ReplacementRequests(status string) []domain.ReplacementRequest {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.ReplacementRequest, 0, len(e.replacementRequests))
	for _, r := range e.replacementRequests {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, cloneReplacementRequest(r))
	}
	return out
}

// ReplacementTickets returns kitchen ticket snapshots.
func (e *Engine) ReplacementTickets() []domain.ReplacementTicket {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.ReplacementTicket, len(e.replacementTickets))
	for i, t := range e.replacementTickets {
		out[i] = cloneReplacementTicket(t)
	}
	return out
}

// CashRequests returns cash adjustment request snapshots, optionally
// filtered by status.
func (e *Engine) CashRequests(status string) []domain.CashAdjustmentRequest {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.CashAdjustmentRequest, 0, len(e.cashRequests))
	for _, r := range e.cashRequests {
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, cloneCashRequest(r))
	}
	return out
}

// CashAdjustments returns approved adjustment records, newest first.
func (e *Engine) CashAdjustments() []domain.CashAdjustment {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]domain.CashAdjustment(nil), e.cashAdjustments...)
}

// CashAudit returns the cash workflow audit trail, newest first.
func (e *Engine) CashAudit() []domain.CashAuditEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]domain.CashAuditEntry(nil), e.cashAudit...)
}
