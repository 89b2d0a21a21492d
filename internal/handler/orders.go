package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
	"github.com/mrdaebak/api/internal/service"
	"github.com/shopspring/decimal"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (*service.OrderDetail, error)
	GetOrder(ctx context.Context, customerID uuid.UUID, orderID int64) (*service.OrderDetail, error)
	ListOrders(ctx context.Context, customerID uuid.UUID) ([]service.OrderDetail, error)
	ListReservations(ctx context.Context, customerID uuid.UUID) ([]service.OrderDetail, error)
	CurrentOrder(ctx context.Context, customerID uuid.UUID) (*service.OrderDetail, error)
	Cancel(ctx context.Context, customerID uuid.UUID, orderID int64) (*database.Order, error)
	ApplyCoupon(ctx context.Context, customerID uuid.UUID, orderID int64, req service.ApplyCouponRequest) (*service.OrderDetail, error)
	PreviewEdit(ctx context.Context, customerID uuid.UUID, orderID int64, lines []service.LineRequest) (*service.EditResult, error)
	UpdateOrder(ctx context.Context, customerID uuid.UUID, orderID int64, req service.UpdateOrderRequest) (*service.OrderDetail, *service.EditResult, error)
	ModificationLogs(ctx context.Context, customerID uuid.UUID, orderID int64) ([]service.ModificationView, error)
	Reorder(ctx context.Context, customerID uuid.UUID, orderID int64) ([]pricing.LineItem, error)
}

// OrderHandler handles a customer's orders.
type OrderHandler struct {
	svc OrderServicer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints. Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Place)
	r.Get("/", h.List)
	r.Get("/current", h.Current)
	r.Get("/reservations", h.Reservations)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/coupon", h.ApplyCoupon)
	r.Post("/{id}/preview", h.Preview)
	r.Get("/{id}/modifications", h.Modifications)
	r.Post("/{id}/reorder", h.Reorder)
}

// --- Request / Response types ---

type placeOrderRequest struct {
	DeliveryType     string     `json:"delivery_type"`
	ReservationTime  *time.Time `json:"reservation_time"`
	CustomerCouponID *int64     `json:"customer_coupon_id"`
}

type applyCouponRequest struct {
	Code             string `json:"code"`
	CustomerCouponID int64  `json:"customer_coupon_id"`
}

type previewRequest struct {
	Items []lineRequest `json:"items"`
}

// updateOrderRequest carries the price difference the customer confirmed, as
// a whole-unit decimal string (e.g. "-15000").
type updateOrderRequest struct {
	Items          []lineRequest `json:"items"`
	ConfirmedDelta string        `json:"confirmed_delta"`
}

type updateOrderResponse struct {
	Order orderResponse `json:"order"`
	Edit  editResponse  `json:"edit"`
}

type modificationResponse struct {
	ID              int64               `json:"id"`
	ModifiedAt      time.Time           `json:"modified_at"`
	PriceDifference string              `json:"price_difference"`
	PreviousItems   []lineItemResponse  `json:"previous_items"`
	NewItems        []lineItemResponse  `json:"new_items"`
	Diffs           []groupDiffResponse `json:"diffs"`
}

// --- Handlers ---

// Place handles POST /orders: the cart becomes an order.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	detail, err := h.svc.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		CustomerID:       userID(r),
		DeliveryType:     req.DeliveryType,
		ReservationTime:  req.ReservationTime,
		CustomerCouponID: req.CustomerCouponID,
	})
	if err != nil {
		writeServiceError(w, "place order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDetailResponse(detail))
}

// List handles GET /orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponses(orders))
}

// Reservations handles GET /orders/reservations.
func (h *OrderHandler) Reservations(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListReservations(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, "list reservations", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponses(orders))
}

// Current handles GET /orders/current.
func (h *OrderHandler) Current(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.CurrentOrder(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, "get current order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	detail, err := h.svc.GetOrder(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, "get order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// Cancel handles POST /orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	order, err := h.svc.Cancel(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, "cancel order", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(*order))
}

// ApplyCoupon handles POST /orders/{id}/coupon.
func (h *OrderHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	detail, err := h.svc.ApplyCoupon(r.Context(), userID(r), id, service.ApplyCouponRequest{
		Code:             req.Code,
		CustomerCouponID: req.CustomerCouponID,
	})
	if err != nil {
		writeServiceError(w, "apply coupon", err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

// Preview handles POST /orders/{id}/preview: what an edit would cost.
func (h *OrderHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	res, err := h.svc.PreviewEdit(r.Context(), userID(r), id, toLineRequests(req.Items))
	if err != nil {
		writeServiceError(w, "preview order edit", err)
		return
	}
	writeJSON(w, http.StatusOK, toEditResponse(res))
}

// Update handles PUT /orders/{id}. When the confirmed delta is stale the
// response is 409 with the current preview so the client can ask again.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ConfirmedDelta == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirmed_delta is required"})
		return
	}
	delta, err := decimal.NewFromString(req.ConfirmedDelta)
	if err != nil || !delta.IsInteger() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid confirmed_delta"})
		return
	}

	detail, res, err := h.svc.UpdateOrder(r.Context(), userID(r), id, service.UpdateOrderRequest{
		Items:          toLineRequests(req.Items),
		ConfirmedDelta: delta.IntPart(),
	})
	if err != nil {
		if errors.Is(err, service.ErrPriceChanged) && res != nil {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error": err.Error(),
				"edit":  toEditResponse(res),
			})
			return
		}
		writeServiceError(w, "update order", err)
		return
	}
	writeJSON(w, http.StatusOK, updateOrderResponse{
		Order: toOrderDetailResponse(detail),
		Edit:  toEditResponse(res),
	})
}

// Modifications handles GET /orders/{id}/modifications.
func (h *OrderHandler) Modifications(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	logs, err := h.svc.ModificationLogs(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, "list modifications", err)
		return
	}
	resp := make([]modificationResponse, len(logs))
	for i, l := range logs {
		resp[i] = modificationResponse{
			ID:              l.ID,
			ModifiedAt:      l.ModifiedAt,
			PriceDifference: money.String(l.PriceDifference),
			PreviousItems:   toLineItemResponses(l.Previous),
			NewItems:        toLineItemResponses(l.New),
			Diffs:           toGroupDiffResponses(l.Diffs),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reorder handles POST /orders/{id}/reorder: the order's items go back into
// the cart.
func (h *OrderHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}
	added, err := h.svc.Reorder(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, "reorder", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"items": toLineItemResponses(added),
		"total": money.String(pricing.TotalPrice(added)),
	})
}

func toOrderDetailResponses(orders []service.OrderDetail) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderDetailResponse(&orders[i])
	}
	return out
}
