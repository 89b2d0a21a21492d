package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
	"github.com/mrdaebak/api/internal/service"
)

// CartServicer defines the service methods needed by cart handlers.
// Satisfied by *service.CartService; narrow interface for testability.
type CartServicer interface {
	Cart(ctx context.Context, customerID uuid.UUID) (*service.CartView, error)
	AddItem(ctx context.Context, customerID uuid.UUID, req service.LineRequest) (pricing.LineItem, error)
	UpdateQuantity(ctx context.Context, customerID uuid.UUID, itemID int64, quantity int32) (pricing.LineItem, error)
	RemoveItem(ctx context.Context, customerID uuid.UUID, itemID int64) error
	Clear(ctx context.Context, customerID uuid.UUID) error
}

// CartHandler handles the customer's cart.
type CartHandler struct {
	svc CartServicer
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc CartServicer) *CartHandler {
	return &CartHandler{svc: svc}
}

// RegisterRoutes registers cart endpoints. Expected to be mounted at /cart.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{id}", h.UpdateQuantity)
	r.Delete("/items/{id}", h.RemoveItem)
}

// --- Request / Response types ---

// lineRequest is one configured menu. An omitted quantity means 1.
type lineRequest struct {
	MenuID               int32                 `json:"menu_id"`
	Style                string                `json:"style"`
	CustomizedQuantities pricing.Customization `json:"customized_quantities"`
	Quantity             *int32                `json:"quantity"`
}

func (l lineRequest) toService() service.LineRequest {
	qty := int32(1)
	if l.Quantity != nil {
		qty = *l.Quantity
	}
	return service.LineRequest{
		MenuID:        l.MenuID,
		Style:         l.Style,
		Customization: l.CustomizedQuantities,
		Quantity:      qty,
	}
}

func toLineRequests(lines []lineRequest) []service.LineRequest {
	out := make([]service.LineRequest, len(lines))
	for i, l := range lines {
		out[i] = l.toService()
	}
	return out
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type cartResponse struct {
	Items []lineItemResponse `json:"items"`
	Total string             `json:"total"`
}

// --- Handlers ---

// Get handles GET /cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Cart(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, "get cart", err)
		return
	}
	writeJSON(w, http.StatusOK, cartResponse{
		Items: toLineItemResponses(cart.Items),
		Total: money.String(cart.Total),
	})
}

// AddItem handles POST /cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req lineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.MenuID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu_id is required"})
		return
	}

	li, err := h.svc.AddItem(r.Context(), userID(r), req.toService())
	if err != nil {
		writeServiceError(w, "add cart item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLineItemResponse(li))
}

// UpdateQuantity handles PATCH /cart/items/{id}.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	li, err := h.svc.UpdateQuantity(r.Context(), userID(r), id, req.Quantity)
	if err != nil {
		writeServiceError(w, "update cart item", err)
		return
	}
	writeJSON(w, http.StatusOK, toLineItemResponse(li))
}

// RemoveItem handles DELETE /cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}
	if err := h.svc.RemoveItem(r.Context(), userID(r), id); err != nil {
		writeServiceError(w, "remove cart item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context(), userID(r)); err != nil {
		writeServiceError(w, "clear cart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
