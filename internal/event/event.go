// Package event describes order lifecycle notifications and fans them out to
// every configured sink (websocket hub, message broker).
package event

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mrdaebak/api/internal/enum"
)

// Event types.
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderUpdated       = "order.updated"
	TypeOrderCouponApplied = "order.coupon_applied"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderClaimed       = "order.claimed"
	TypeOrderReady         = "order.ready"
)

// OrderEvent is published after a change to an order has been committed.
type OrderEvent struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	OrderID     int64     `json:"order_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	FinalPrice  int64     `json:"final_price"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id, the status label and the current time.
func New(eventType string, orderID int64, customerID uuid.UUID, status string, finalPrice int64) OrderEvent {
	return OrderEvent{
		ID:          uuid.New(),
		Type:        eventType,
		OrderID:     orderID,
		CustomerID:  customerID,
		Status:      status,
		StatusLabel: enum.StatusLabel(status),
		FinalPrice:  finalPrice,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher delivers order events somewhere.
type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
}

// Multi publishes to every sink in order. A failing sink is logged and does
// not stop the others; delivery is best effort once the order is committed.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e OrderEvent) error {
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			log.Printf("ERROR: publish %s for order %d: %v", e.Type, e.OrderID, err)
		}
	}
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, OrderEvent) error { return nil }
