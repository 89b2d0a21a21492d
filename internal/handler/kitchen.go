package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/service"
	"github.com/shopspring/decimal"
)

// InventoryServicer defines the stock methods used by kitchen handlers.
// Satisfied by *service.InventoryService.
type InventoryServicer interface {
	List(ctx context.Context) ([]database.MenuItem, error)
	Update(ctx context.Context, code, action string, quantity int32) (database.MenuItem, error)
}

// CouponServicer defines the coupon administration methods used by kitchen
// handlers. Satisfied by *service.CouponService.
type CouponServicer interface {
	Create(ctx context.Context, code string, discount int64) (database.Coupon, error)
	List(ctx context.Context) ([]database.Coupon, error)
	Toggle(ctx context.Context, id int64) (database.Coupon, error)
	Delete(ctx context.Context, id int64) error
	Grant(ctx context.Context, customerID uuid.UUID, code string) (database.CustomerCoupon, error)
}

// KitchenHandler handles the kitchen staff screens: the order queues, stock
// and coupon administration.
type KitchenHandler struct {
	orders    StatusServicer
	inventory InventoryServicer
	coupons   CouponServicer
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(orders StatusServicer, inventory InventoryServicer, coupons CouponServicer) *KitchenHandler {
	return &KitchenHandler{orders: orders, inventory: inventory, coupons: coupons}
}

// RegisterRoutes registers kitchen endpoints. Expected to be mounted at
// /kitchen behind RequireRole(KITCHEN_STAFF).
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders/pending", h.Pending)
	r.Get("/orders/reservations", h.Reservations)
	r.Get("/orders/mine", h.Mine)
	r.Post("/orders/{id}/claim", transition("claim order", h.orders.Claim))
	r.Post("/orders/{id}/start", transition("start cooking", h.orders.StartCooking))
	r.Post("/orders/{id}/complete", transition("mark order ready", h.orders.MarkReady))
	r.Post("/orders/{id}/reject", transition("reject order", h.orders.Reject))

	r.Get("/inventory", h.ListInventory)
	r.Patch("/inventory/{code}", h.UpdateInventory)

	r.Get("/coupons", h.ListCoupons)
	r.Post("/coupons", h.CreateCoupon)
	r.Post("/coupons/grant", h.GrantCoupon)
	r.Patch("/coupons/{id}/toggle", h.ToggleCoupon)
	r.Delete("/coupons/{id}", h.DeleteCoupon)
}

// --- Request types ---

type updateStockRequest struct {
	Action   string `json:"action"`
	Quantity int32  `json:"quantity"`
}

type createCouponRequest struct {
	Code           string `json:"code"`
	DiscountAmount string `json:"discount_amount"`
}

type grantCouponRequest struct {
	CustomerID string `json:"customer_id"`
	Code       string `json:"code"`
}

// --- Order queues ---

// Pending handles GET /kitchen/orders/pending.
func (h *KitchenHandler) Pending(w http.ResponseWriter, r *http.Request) {
	listQueue(w, r, h.orders, service.QueueKitchenPending)
}

// Reservations handles GET /kitchen/orders/reservations.
func (h *KitchenHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	listQueue(w, r, h.orders, service.QueueKitchenReservations)
}

// Mine handles GET /kitchen/orders/mine.
func (h *KitchenHandler) Mine(w http.ResponseWriter, r *http.Request) {
	listQueue(w, r, h.orders, service.QueueKitchenMine)
}

// --- Inventory ---

// ListInventory handles GET /kitchen/inventory.
func (h *KitchenHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		writeServiceError(w, "list inventory", err)
		return
	}
	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = toMenuItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateInventory handles PATCH /kitchen/inventory/{code}.
func (h *KitchenHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.inventory.Update(r.Context(), code, strings.ToUpper(req.Action), req.Quantity)
	if err != nil {
		writeServiceError(w, "update stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// --- Coupons ---

// ListCoupons handles GET /kitchen/coupons.
func (h *KitchenHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeServiceError(w, "list coupons", err)
		return
	}
	resp := make([]couponResponse, len(coupons))
	for i, c := range coupons {
		resp[i] = toCouponResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateCoupon handles POST /kitchen/coupons.
func (h *KitchenHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	amount, err := decimal.NewFromString(req.DiscountAmount)
	if err != nil || !amount.IsInteger() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid discount_amount"})
		return
	}

	c, err := h.coupons.Create(r.Context(), req.Code, amount.IntPart())
	if err != nil {
		writeServiceError(w, "create coupon", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponResponse(c))
}

// ToggleCoupon handles PATCH /kitchen/coupons/{id}/toggle.
func (h *KitchenHandler) ToggleCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coupon id"})
		return
	}
	c, err := h.coupons.Toggle(r.Context(), id)
	if err != nil {
		writeServiceError(w, "toggle coupon", err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(c))
}

// DeleteCoupon handles DELETE /kitchen/coupons/{id}.
func (h *KitchenHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coupon id"})
		return
	}
	if err := h.coupons.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "delete coupon", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GrantCoupon handles POST /kitchen/coupons/grant.
func (h *KitchenHandler) GrantCoupon(w http.ResponseWriter, r *http.Request) {
	var req grantCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid customer_id"})
		return
	}

	cc, err := h.coupons.Grant(r.Context(), customerID, req.Code)
	if err != nil {
		writeServiceError(w, "grant coupon", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerCouponResponse(cc))
}
