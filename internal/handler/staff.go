package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
	"github.com/mrdaebak/api/internal/service"
)

// StatusServicer defines the workflow methods used by kitchen and delivery
// handlers. Satisfied by *service.StatusService.
type StatusServicer interface {
	List(ctx context.Context, q service.Queue, staffID uuid.UUID) ([]service.StaffOrder, error)
	Claim(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error)
	StartCooking(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error)
	MarkReady(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error)
	Reject(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error)
	Pickup(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error)
	CompleteDelivery(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error)
}

type transitionFunc func(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error)

// listQueue writes the orders of one work list.
func listQueue(w http.ResponseWriter, r *http.Request, svc StatusServicer, q service.Queue) {
	orders, err := svc.List(r.Context(), q, userID(r))
	if err != nil {
		writeServiceError(w, "list "+string(q), err)
		return
	}
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o.Order)
		resp[i].Items = toLineItemResponses(o.Items)
		resp[i].Total = money.String(pricing.TotalPrice(o.Items))
	}
	writeJSON(w, http.StatusOK, resp)
}

// transition returns a handler that applies one workflow step to {id}.
func transition(op string, fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
			return
		}
		order, err := fn(r.Context(), userID(r), id)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, toOrderResponse(*order))
	}
}

// DeliveryHandler handles the delivery staff screens.
type DeliveryHandler struct {
	svc StatusServicer
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(svc StatusServicer) *DeliveryHandler {
	return &DeliveryHandler{svc: svc}
}

// RegisterRoutes registers delivery endpoints. Expected to be mounted at
// /delivery behind RequireRole(DELIVERY_STAFF).
func (h *DeliveryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders/ready", h.Ready)
	r.Get("/orders/mine", h.Mine)
	r.Post("/orders/{id}/pickup", transition("pickup order", h.svc.Pickup))
	r.Post("/orders/{id}/complete", transition("complete delivery", h.svc.CompleteDelivery))
}

// Ready handles GET /delivery/orders/ready.
func (h *DeliveryHandler) Ready(w http.ResponseWriter, r *http.Request) {
	listQueue(w, r, h.svc, service.QueueDeliveryReady)
}

// Mine handles GET /delivery/orders/mine.
func (h *DeliveryHandler) Mine(w http.ResponseWriter, r *http.Request) {
	listQueue(w, r, h.svc, service.QueueDeliveryMine)
}
