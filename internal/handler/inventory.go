package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lumina-pos/api/internal/domain"
	"github.com/lumina-pos/api/internal/engine"
	"github.com/lumina-pos/api/internal/middleware"
)

// InventoryEngine defines the engine methods needed by inventory handlers.
// Satisfied by *engine.Engine.
type InventoryEngine interface {
	Ingredients(lowOnly bool) []domain.Ingredient
	Ingredient(id string) (domain.Ingredient, error)
	AddIngredient(in engine.IngredientInput, actor domain.Actor) (domain.Ingredient, error)
	UpdateIngredient(id string, in engine.IngredientInput, actor domain.Actor) (domain.Ingredient, error)
	AdjustStock(ingredientID, entryType string, qty decimal.Decimal, reason string, actor domain.Actor) (domain.Ingredient, error)
	StockEntries(ingredientID string) []domain.StockEntry
	Recipes() []domain.Recipe
	Recipe(productID string) (domain.Recipe, error)
	SaveRecipe(in engine.RecipeInput, actor domain.Actor) (domain.Recipe, error)
	RemoveRecipe(productID string, actor domain.Actor) error
}

// InventoryHandler handles ingredient, ledger and recipe endpoints.
type InventoryHandler struct {
	eng InventoryEngine
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(eng InventoryEngine) *InventoryHandler {
	return &InventoryHandler{eng: eng}
}

// RegisterRoutes registers inventory endpoints on the given Chi router.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ingredients", h.ListIngredients)
	r.Post("/ingredients", h.CreateIngredient)
	r.Get("/ingredients/{id}", h.GetIngredient)
	r.Put("/ingredients/{id}", h.UpdateIngredient)
	r.Post("/ingredients/{id}/adjust", h.Adjust)
	r.Get("/ingredients/{id}/ledger", h.Ledger)
	r.Get("/recipes", h.ListRecipes)
	r.Get("/recipes/{productID}", h.GetRecipe)
	r.Put("/recipes/{productID}", h.SaveRecipe)
	r.Delete("/recipes/{productID}", h.DeleteRecipe)
}

type adjustRequestBody struct {
	Type   string          `json:"type"`
	Qty    decimal.Decimal `json:"qty"`
	Reason string          `json:"reason"`
}

// ListIngredients handles GET /ingredients; ?low=true keeps only
// ingredients at or below their reorder level.
func (h *InventoryHandler) ListIngredients(w http.ResponseWriter, r *http.Request) {
	lowOnly := r.URL.Query().Get("low") == "true"
	writeJSON(w, http.StatusOK, map[string]interface{}{"ingredients": h.eng.Ingredients(lowOnly)})
}

// CreateIngredient handles POST /ingredients.
func (h *InventoryHandler) CreateIngredient(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var in engine.IngredientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ing, err := h.eng.AddIngredient(in, actor)
	if err != nil {
		writeEngineError(w, "create ingredient", err)
		return
	}
	writeJSON(w, http.StatusCreated, ing)
}

// GetIngredient handles GET /ingredients/{id}.
func (h *InventoryHandler) GetIngredient(w http.ResponseWriter, r *http.Request) {
	ing, err := h.eng.Ingredient(chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, "get ingredient", err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

// UpdateIngredient handles PUT /ingredients/{id}.
func (h *InventoryHandler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var in engine.IngredientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ing, err := h.eng.UpdateIngredient(chi.URLParam(r, "id"), in, actor)
	if err != nil {
		writeEngineError(w, "update ingredient", err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

// Adjust handles POST /ingredients/{id}/adjust.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req adjustRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ing, err := h.eng.AdjustStock(chi.URLParam(r, "id"), req.Type, req.Qty, req.Reason, actor)
	if err != nil {
		writeEngineError(w, "adjust stock", err)
		return
	}
	writeJSON(w, http.StatusOK, ing)
}

// Ledger handles GET /ingredients/{id}/ledger.
func (h *InventoryHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": h.eng.StockEntries(chi.URLParam(r, "id")),
	})
}

// ListRecipes handles GET /recipes.
func (h *InventoryHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"recipes": h.eng.Recipes()})
}

// GetRecipe handles GET /recipes/{productID}.
func (h *InventoryHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.eng.Recipe(chi.URLParam(r, "productID"))
	if err != nil {
		writeEngineError(w, "get recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// SaveRecipe handles PUT /recipes/{productID}.
func (h *InventoryHandler) SaveRecipe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var in engine.RecipeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	in.ProductID = chi.URLParam(r, "productID")

	recipe, err := h.eng.SaveRecipe(in, actor)
	if err != nil {
		writeEngineError(w, "save recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// DeleteRecipe handles DELETE /recipes/{productID}.
func (h *InventoryHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	if err := h.eng.RemoveRecipe(chi.URLParam(r, "productID"), actor); err != nil {
		writeEngineError(w, "delete recipe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
