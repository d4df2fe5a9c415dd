package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/archive"
	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/engine"
	"github.com/lumina-pos/api/internal/enum"
	"github.com/lumina-pos/api/internal/inventory"
	"github.com/lumina-pos/api/internal/middleware"
	"github.com/lumina-pos/api/internal/ws"
)

// OrderEngine defines the engine methods needed by order handlers.
// Satisfied by *engine.Engine; narrow interface for testability.
type OrderEngine interface {
	PlaceOrder(req engine.PlaceOrderRequest, actor domain.Actor) (*domain.Order, error)
	Orders(status string) []*domain.Order
	Order(id string) (*domain.Order, error)
	ValidateOrderStock(id string) (inventory.Validation, error)
	MarkPaid(id string, p engine.Payment, actor domain.Actor) (*domain.Order, error)
	CaptureAndSendToKitchen(id string, p engine.Payment, actor domain.Actor) (*domain.Order, error)
	CaptureAndPrepare(id string, p engine.Payment, actor domain.Actor) (*domain.Order, error)
	SendToKitchen(id string, actor domain.Actor) (*domain.Order, error)
	StartPreparing(id string, actor domain.Actor) (*domain.Order, error)
	MarkReady(id string, actor domain.Actor) (*domain.Order, error)
	CloseOrder(id string, actor domain.Actor) (*domain.Order, error)
	CancelOrder(id, reason string, actor domain.Actor) (*domain.Order, error)
	UpdateNote(id, note string, actor domain.Actor) (*domain.Order, error)
	RefundOrder(id string, items []inventory.RefundItem, reason string, actor domain.Actor) (*domain.Order, error)
}

// OrderHandler handles order endpoints. The hub and archiver are optional;
// both are fire-and-forget side channels off the committed engine state.
type OrderHandler struct {
	eng      OrderEngine
	hub      *ws.Hub
	archiver *archive.Archiver
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(eng OrderEngine, hub *ws.Hub, archiver *archive.Archiver) *OrderHandler {
	return &OrderHandler{eng: eng, hub: hub, archiver: archiver}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/stock-check", h.StockCheck)
	r.Post("/{id}/payment", h.CapturePayment)
	r.Post("/{id}/send", h.Send)
	r.Post("/{id}/prepare", h.Prepare)
	r.Post("/{id}/ready", h.Ready)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/refund", h.Refund)
	r.Patch("/{id}/note", h.UpdateNote)
	r.Delete("/{id}", h.Cancel)
}

// --- Request types ---

type paymentRequest struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Change    decimal.Decimal `json:"change"`
	Reference string          `json:"reference"`
	Payer     string          `json:"payer"`
	// Route selects what happens after capture: "kitchen" (default),
	// "prepare", or "none" to leave the order PAID.
	Route string `json:"route"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type refundRequest struct {
	Items  []inventory.RefundItem `json:"items"`
	Reason string                 `json:"reason"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req engine.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.eng.PlaceOrder(req, actor)
	if err != nil {
		writeEngineError(w, "place order", err)
		return
	}

	h.publish("order.placed", order, ws.TopicOrders)
	writeJSON(w, http.StatusCreated, order)
}

// List handles GET /orders with an optional status filter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders := h.eng.Orders(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.eng.Order(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// StockCheck handles GET /orders/{id}/stock-check, a dry-run inventory
// validation for the counter UI.
func (h *OrderHandler) StockCheck(w http.ResponseWriter, r *http.Request) {
	v, err := h.eng.ValidateOrderStock(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "stock check", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CapturePayment handles POST /orders/{id}/payment.
func (h *OrderHandler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p := engine.Payment{
		Method:    req.Method,
		Amount:    req.Amount,
		Change:    req.Change,
		Reference: req.Reference,
		Payer:     req.Payer,
	}

	id := chi.URLParam(r, "id")
	var order *domain.Order
	var err error
	switch req.Route {
	case "", "kitchen":
		order, err = h.eng.CaptureAndSendToKitchen(id, p, actor)
	case "prepare":
		order, err = h.eng.CaptureAndPrepare(id, p, actor)
	case "none":
		order, err = h.eng.MarkPaid(id, p, actor)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "route must be kitchen, prepare or none"})
		return
	}
	if err != nil {
		writeEngineError(w, "capture payment", err)
		return
	}

	h.publish("order.paid", order, ws.TopicOrders)
	if order.Status == enum.OrderStatusSentToKitchen || order.Status == enum.OrderStatusPreparing {
		h.publish("order.updated", order, ws.TopicKitchen)
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, op string,
	fn func(id string, actor domain.Actor) (*domain.Order, error)) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	order, err := fn(chi.URLParam(r, "id"), actor)
	if err != nil {
		writeEngineError(w, op, err)
		return
	}

	h.publish("order.updated", order, ws.TopicOrders, ws.TopicKitchen)
	h.archiveIfTerminal(order)
	writeJSON(w, http.StatusOK, order)
}

// Send handles POST /orders/{id}/send.
func (h *OrderHandler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "send to kitchen", h.eng.SendToKitchen)
}

// Prepare handles POST /orders/{id}/prepare.
func (h *OrderHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start preparing", h.eng.StartPreparing)
}

// Ready handles POST /orders/{id}/ready.
func (h *OrderHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "mark ready", h.eng.MarkReady)
}

// Close handles POST /orders/{id}/close.
func (h *OrderHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "close order", h.eng.CloseOrder)
}

// Cancel handles DELETE /orders/{id}.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.eng.CancelOrder(chi.URLParam(r, "id"), req.Reason, actor)
	if err != nil {
		writeEngineError(w, "cancel order", err)
		return
	}

	h.publish("order.cancelled", order, ws.TopicOrders, ws.TopicKitchen)
	h.archiveIfTerminal(order)
	writeJSON(w, http.StatusOK, order)
}

// UpdateNote handles PATCH /orders/{id}/note.
func (h *OrderHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.eng.UpdateNote(chi.URLParam(r, "id"), req.Note, actor)
	if err != nil {
		writeEngineError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Refund handles POST /orders/{id}/refund.
func (h *OrderHandler) Refund(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.eng.RefundOrder(chi.URLParam(r, "id"), req.Items, req.Reason, actor)
	if err != nil {
		writeEngineError(w, "refund order", err)
		return
	}

	h.publish("order.refunded", order, ws.TopicOrders)
	writeJSON(w, http.StatusOK, order)
}

// --- Helpers ---

func (h *OrderHandler) publish(eventType string, o *domain.Order, topics ...string) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(o)
	if err != nil {
		return
	}
	for _, topic := range topics {
		h.hub.Broadcast(topic, ws.Event{Type: eventType, Payload: payload})
	}
}

func (h *OrderHandler) archiveIfTerminal(o *domain.Order) {
	if h.archiver == nil {
		return
	}
	if o.Status == enum.OrderStatusCompleted || o.Status == enum.OrderStatusCancelled {
		h.archiver.ArchiveAsync(o)
	}
}
