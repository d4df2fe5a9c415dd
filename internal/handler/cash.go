package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/middleware"
)

// CashEngine defines the engine methods needed by cash adjustment handlers.
// Satisfied by *engine.Engine.
type CashEngine interface {
	RequestCashAdjustment(adjType string, amount decimal.Decimal, reason, relatedOrderID string, actor domain.Actor) (domain.CashAdjustmentRequest, error)
	ReviewCashAdjustment(requestID string, approve bool, note string, actor domain.Actor) (domain.CashAdjustmentRequest, error)
	CashRequests(status string) []domain.CashAdjustmentRequest
	CashAdjustments() []domain.CashAdjustment
	CashAudit() []domain.CashAuditEntry
}

// CashHandler handles drawer shortage/overage endpoints.
type CashHandler struct {
	eng CashEngine
}

// NewCashHandler creates a new CashHandler.
func NewCashHandler(eng CashEngine) *CashHandler {
	return &CashHandler{eng: eng}
}

// RegisterRoutes registers cash endpoints on the given Chi router.
// Expected to be mounted at /cash.
func (h *CashHandler) RegisterRoutes(r chi.Router) {
	r.Post("/requests", h.Request)
	r.Get("/requests", h.List)
	r.Post("/requests/{id}/review", h.Review)
	r.Get("/adjustments", h.Adjustments)
	r.Get("/audit", h.Audit)
}

type cashRequestBody struct {
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	RelatedOrderID string          `json:"related_order_id"`
}

// Request handles POST /cash/requests.
func (h *CashHandler) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req cashRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := h.eng.RequestCashAdjustment(req.Type, req.Amount, req.Reason, req.RelatedOrderID, actor)
	if err != nil {
		writeEngineError(w, "request cash adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /cash/requests with an optional status filter.
func (h *CashHandler) List(w http.ResponseWriter, r *http.Request) {
	requests := h.eng.CashRequests(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// Review handles POST /cash/requests/{id}/review.
func (h *CashHandler) Review(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req reviewRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	reviewed, err := h.eng.ReviewCashAdjustment(chi.URLParam(r, "id"), req.Approve, req.Note, actor)
	if err != nil {
		writeEngineError(w, "review cash adjustment", err)
		return
	}
	writeJSON(w, http.StatusOK, reviewed)
}

// Adjustments handles GET /cash/adjustments.
func (h *CashHandler) Adjustments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"adjustments": h.eng.CashAdjustments()})
}

// Audit handles GET /cash/audit.
func (h *CashHandler) Audit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": h.eng.CashAudit()})
}
