package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mrdaebak/api/internal/enum"
	"github.com/mrdaebak/api/internal/event"
)

// Rooms staff members join. Customers each get their own room.
const (
	RoomKitchen  = "kitchen"
	RoomDelivery = "delivery"
)

// CustomerRoom is the room a customer's connections join.
func CustomerRoom(customerID uuid.UUID) string {
	return "customer:" + customerID.String()
}

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent is an internal struct for routing events to one room
type roomEvent struct {
	Room  string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *roomEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[ev.Room] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.rooms[ev.Room], client)
					if len(h.rooms[ev.Room]) == 0 {
						delete(h.rooms, ev.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends an event to all clients in a room.
func (h *Hub) BroadcastToRoom(room string, event Event) {
	h.broadcast <- &roomEvent{Room: room, Event: event}
}

// Publish fans an order event out to the rooms that follow it. It blocks
// only while the broadcast queue is full.
func (h *Hub) Publish(ctx context.Context, e event.OrderEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := Event{Type: e.Type, Payload: payload}
	for _, room := range Rooms(e) {
		select {
		case h.broadcast <- &roomEvent{Room: room, Event: msg}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Rooms lists the rooms an order event is delivered to. The owning customer
// always hears about their order. The kitchen follows orders until they are
// ready; delivery staff follow them from ready to completed.
func Rooms(e event.OrderEvent) []string {
	rooms := []string{CustomerRoom(e.CustomerID)}
	switch e.Type {
	case event.TypeOrderPlaced, event.TypeOrderUpdated, event.TypeOrderCouponApplied, event.TypeOrderClaimed:
		rooms = append(rooms, RoomKitchen)
	case event.TypeOrderReady:
		rooms = append(rooms, RoomKitchen, RoomDelivery)
	case event.TypeOrderStatusChanged:
		switch e.Status {
		case enum.OrderStatusDelivering, enum.OrderStatusCompleted:
			rooms = append(rooms, RoomDelivery)
		default:
			rooms = append(rooms, RoomKitchen)
		}
	}
	return rooms
}
