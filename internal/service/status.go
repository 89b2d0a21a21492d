package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mrdaebak/api/internal/database"
	"github.com/mrdaebak/api/internal/event"
	"github.com/mrdaebak/api/internal/money"
	"github.com/mrdaebak/api/internal/pricing"
)

// ErrInvalidTransition is returned when an order is not in the state an
// action requires, for example picking up an order that is not ready yet.
var ErrInvalidTransition = errors.New("order is not in a state that allows this action")

// StatusStore defines the DB methods kitchen and delivery staff need.
// Satisfied by *database.Queries.
type StatusStore interface {
	GetOrder(ctx context.Context, id int64) (database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItem, error)
	ListPendingKitchenOrders(ctx context.Context) ([]database.Order, error)
	ListKitchenReservations(ctx context.Context) ([]database.Order, error)
	ListOrdersByKitchenStaff(ctx context.Context, staffID pgtype.UUID) ([]database.Order, error)
	ListReadyOrders(ctx context.Context) ([]database.Order, error)
	ListOrdersByDeliveryStaff(ctx context.Context, staffID pgtype.UUID) ([]database.Order, error)

	ClaimOrderForKitchen(ctx context.Context, arg database.OrderStaffParams) (database.Order, error)
	StartCooking(ctx context.Context, arg database.OrderStaffParams) (database.Order, error)
	MarkOrderReady(ctx context.Context, arg database.OrderStaffParams) (database.Order, error)
	RejectOrder(ctx context.Context, arg database.OrderStaffParams) (database.Order, error)
	PickupOrder(ctx context.Context, arg database.OrderStaffParams) (database.Order, error)
	CompleteDelivery(ctx context.Context, arg database.OrderStaffParams) (database.Order, error)
}

// StatusService moves orders through the kitchen and delivery workflow:
//
//	RECEIVED -> COOKING -> (ready) -> DELIVERING -> COMPLETED
//	RECEIVED -> REJECTED
//
// Each step is a single conditional UPDATE, so two staff members acting on the
// same order at once cannot both succeed.
type StatusService struct {
	store  StatusStore
	events event.Publisher
}

// NewStatusService creates a new StatusService.
func NewStatusService(store StatusStore, events event.Publisher) *StatusService {
	if events == nil {
		events = event.Discard{}
	}
	return &StatusService{store: store, events: events}
}

type transitionFn func(ctx context.Context, arg database.OrderStaffParams) (database.Order, error)

func (s *StatusService) transition(ctx context.Context, fn transitionFn, eventType string, orderID int64, staffID uuid.UUID) (*database.Order, error) {
	order, err := fn(ctx, database.OrderStaffParams{
		ID:      orderID,
		StaffID: pgtype.UUID{Bytes: staffID, Valid: true},
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update order %d: %w", orderID, err)
		}
		if _, gerr := s.store.GetOrder(ctx, orderID); gerr != nil {
			if errors.Is(gerr, pgx.ErrNoRows) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("get order %d: %w", orderID, gerr)
		}
		return nil, ErrInvalidTransition
	}

	e := event.New(eventType, order.ID, order.CustomerID, order.Status, money.FromNumeric(order.FinalPrice))
	if err := s.events.Publish(ctx, e); err != nil {
		log.Printf("ERROR: publish %s for order %d: %v", eventType, order.ID, err)
	}
	return &order, nil
}

// Claim assigns a received order to a kitchen staff member without starting it.
func (s *StatusService) Claim(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error) {
	return s.transition(ctx, s.store.ClaimOrderForKitchen, event.TypeOrderClaimed, orderID, staffID)
}

// StartCooking moves a received order to COOKING.
func (s *StatusService) StartCooking(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error) {
	return s.transition(ctx, s.store.StartCooking, event.TypeOrderStatusChanged, orderID, staffID)
}

// MarkReady records that cooking is done and the order can be picked up.
func (s *StatusService) MarkReady(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error) {
	return s.transition(ctx, s.store.MarkOrderReady, event.TypeOrderReady, orderID, staffID)
}

// Reject refuses a received order.
func (s *StatusService) Reject(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error) {
	return s.transition(ctx, s.store.RejectOrder, event.TypeOrderStatusChanged, orderID, staffID)
}

// Pickup hands a ready order to a delivery staff member.
func (s *StatusService) Pickup(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error) {
	return s.transition(ctx, s.store.PickupOrder, event.TypeOrderStatusChanged, orderID, staffID)
}

// CompleteDelivery marks an order the staff member is delivering as COMPLETED.
func (s *StatusService) CompleteDelivery(ctx context.Context, staffID uuid.UUID, orderID int64) (*database.Order, error) {
	return s.transition(ctx, s.store.CompleteDelivery, event.TypeOrderStatusChanged, orderID, staffID)
}

// Queue names one of the staff work lists.
type Queue string

const (
	QueueKitchenPending      Queue = "kitchen_pending"
	QueueKitchenReservations Queue = "kitchen_reservations"
	QueueKitchenMine         Queue = "kitchen_mine"
	QueueDeliveryReady       Queue = "delivery_ready"
	QueueDeliveryMine        Queue = "delivery_mine"
)

// List returns the orders in a work list, each with its reconciled items.
func (s *StatusService) List(ctx context.Context, q Queue, staffID uuid.UUID) ([]StaffOrder, error) {
	staff := pgtype.UUID{Bytes: staffID, Valid: true}
	var (
		orders []database.Order
		err    error
	)
	switch q {
	case QueueKitchenPending:
		orders, err = s.store.ListPendingKitchenOrders(ctx)
	case QueueKitchenReservations:
		orders, err = s.store.ListKitchenReservations(ctx)
	case QueueKitchenMine:
		orders, err = s.store.ListOrdersByKitchenStaff(ctx, staff)
	case QueueDeliveryReady:
		orders, err = s.store.ListReadyOrders(ctx)
	case QueueDeliveryMine:
		orders, err = s.store.ListOrdersByDeliveryStaff(ctx, staff)
	default:
		return nil, fmt.Errorf("unknown queue %q", q)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", q, err)
	}

	out := make([]StaffOrder, 0, len(orders))
	for _, o := range orders {
		rows, err := s.store.ListOrderItemsByOrder(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("list items of order %d: %w", o.ID, err)
		}
		out = append(out, StaffOrder{Order: o, Items: reconciledItems(rows)})
	}
	return out, nil
}

// StaffOrder is an order as kitchen and delivery staff see it.
type StaffOrder struct {
	Order database.Order
	Items []pricing.LineItem
}
