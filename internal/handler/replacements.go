package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/engine"
	"github.com/lumina-pos/api/internal/middleware"
	"github.com/lumina-pos/api/internal/ws"
)

// ReplacementEngine defines the engine methods needed by replacement
// handlers. Satisfied by *engine.Engine.
type ReplacementEngine interface {
	RequestReplacement(orderID string, items []engine.ReplacementItemInput, reason string, actor domain.Actor) (domain.ReplacementRequest, error)
	ReviewReplacement(requestID string, approve bool, note string, actor domain.Actor) (domain.ReplacementRequest, error)
	ReplacementRequests(status string) []domain.ReplacementRequest
	ReplacementTickets() []domain.ReplacementTicket
	StartReplacementTicket(ticketID string, actor domain.Actor) (domain.ReplacementTicket, error)
	MarkReplacementReady(ticketID string, actor domain.Actor) (domain.ReplacementTicket, error)
}

// ReplacementHandler handles the remake workflow endpoints.
type ReplacementHandler struct {
	eng ReplacementEngine
	hub *ws.Hub
}

// NewReplacementHandler creates a new ReplacementHandler.
func NewReplacementHandler(eng ReplacementEngine, hub *ws.Hub) *ReplacementHandler {
	return &ReplacementHandler{eng: eng, hub: hub}
}

// RegisterRoutes registers replacement endpoints on the given Chi router.
func (h *ReplacementHandler) RegisterRoutes(r chi.Router) {
	r.Post("/replacements", h.Request)
	r.Get("/replacements", h.List)
	r.Post("/replacements/{id}/review", h.Review)
	r.Get("/tickets", h.ListTickets)
	r.Post("/tickets/{id}/start", h.StartTicket)
	r.Post("/tickets/{id}/ready", h.ReadyTicket)
}

// --- Request types ---

type replacementRequestBody struct {
	OrderID string                        `json:"order_id"`
	Items   []engine.ReplacementItemInput `json:"items"`
	Reason  string                        `json:"reason"`
}

type reviewRequestBody struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// --- Handlers ---

// Request handles POST /replacements.
func (h *ReplacementHandler) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req replacementRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	created, err := h.eng.RequestReplacement(req.OrderID, req.Items, req.Reason, actor)
	if err != nil {
		writeEngineError(w, "request replacement", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List handles GET /replacements with an optional status filter.
func (h *ReplacementHandler) List(w http.ResponseWriter, r *http.Request) {
	requests := h.eng.ReplacementRequests(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// Review handles POST /replacements/{id}/review. Approval spawns a kitchen
// ticket, which is announced on the kitchen topic.
func (h *ReplacementHandler) Review(w http.ResponseWriter, r *http.Request) {
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

	reviewed, err := h.eng.ReviewReplacement(chi.URLParam(r, "id"), req.Approve, req.Note, actor)
	if err != nil {
		writeEngineError(w, "review replacement", err)
		return
	}

	if req.Approve {
		h.publishTickets("ticket.created")
	}
	writeJSON(w, http.StatusOK, reviewed)
}

// ListTickets handles GET /tickets.
func (h *ReplacementHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tickets": h.eng.ReplacementTickets()})
}

// StartTicket handles POST /tickets/{id}/start.
func (h *ReplacementHandler) StartTicket(w http.ResponseWriter, r *http.Request) {
	h.ticketTransition(w, r, "start ticket", h.eng.StartReplacementTicket)
}

// ReadyTicket handles POST /tickets/{id}/ready.
func (h *ReplacementHandler) ReadyTicket(w http.ResponseWriter, r *http.Request) {
	h.ticketTransition(w, r, "ready ticket", h.eng.MarkReplacementReady)
}

// --- Helpers ---

func (h *ReplacementHandler) ticketTransition(w http.ResponseWriter, r *http.Request, op string,
	fn func(id string, actor domain.Actor) (domain.ReplacementTicket, error)) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	ticket, err := fn(chi.URLParam(r, "id"), actor)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}

	if h.hub != nil {
		if payload, err := json.Marshal(ticket); err == nil {
			h.hub.Broadcast(ws.TopicKitchen, ws.Event{Type: "ticket.updated", Payload: payload})
		}
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *ReplacementHandler) publishTickets(eventType string) {
	if h.hub == nil {
		return
	}
	tickets := h.eng.ReplacementTickets()
	if len(tickets) == 0 {
		return
	}
	if payload, err := json.Marshal(tickets[0]); err == nil {
		h.hub.Broadcast(ws.TopicKitchen, ws.Event{Type: eventType, Payload: payload})
	}
}
