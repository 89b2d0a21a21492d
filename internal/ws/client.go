package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mrdaebak/api/internal/auth"
	"github.com/mrdaebak/api/internal/enum"
)

// Order feed connections are server-to-client only. Subscribers send nothing
// but control frames, so inbound reads exist to notice pongs and disconnects.
const (
	feedWriteTimeout = 10 * time.Second
	feedIdleTimeout  = 60 * time.Second
	// Must stay below feedIdleTimeout so a healthy subscriber always answers
	// a ping before its read deadline.
	feedPingInterval = 50 * time.Second
	feedMaxInbound   = 128
	// Order events a slow subscriber may fall behind by before the hub drops it.
	feedBacklog = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  256,
	WriteBufferSize: 1024,
	// Access is gated by the token in the query string, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one subscriber to an order feed room.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	room string
	send chan []byte
}

// watchDisconnect holds the connection's read side until the subscriber goes
// away, then leaves the room. Anything the subscriber sends is discarded.
func (c *Client) watchDisconnect() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(feedMaxInbound)
	c.conn.SetReadDeadline(time.Now().Add(feedIdleTimeout)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedIdleTimeout))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WARN: order feed %s: %v", c.room, err)
			}
			return
		}
	}
}

// deliverEvents writes each order event queued for this subscriber as its own
// text frame, so every frame parses as a single JSON document, and keeps the
// connection alive with pings between events.
func (c *Client) deliverEvents() {
	ticker := time.NewTicker(feedPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout)) //nolint:errcheck
			if !ok {
				// Dropped by the hub.
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "feed closed")) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("WARN: order feed %s: write: %v", c.room, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// RoomForClaims picks the room a connection joins from its token.
func RoomForClaims(claims *auth.Claims) (string, bool) {
	switch claims.Role {
	case enum.UserRoleCustomer:
		return CustomerRoom(claims.UserID), true
	case enum.UserRoleKitchenStaff:
		return RoomKitchen, true
	case enum.UserRoleDeliveryStaff:
		return RoomDelivery, true
	}
	return "", false
}

// ServeWS subscribes the caller to the order feed room their token entitles
// them to. Endpoint: WS /ws/orders?token=JWT
func ServeWS(hub *Hub, jwtSecret string, w http.ResponseWriter, r *http.Request) {
	// 1. Extract token from query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	// 2. Validate JWT
	claims, err := auth.ValidateToken(jwtSecret, tokenStr)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	// 3. Customers follow their own orders, staff follow their station
	room, ok := RoomForClaims(claims)
	if !ok {
		http.Error(w, "role has no order feed", http.StatusForbidden)
		return
	}

	// 4. Upgrade to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	// 5. Create client and register with hub
	client := &Client{
		hub:  hub,
		conn: conn,
		room: room,
		send: make(chan []byte, feedBacklog),
	}
	client.hub.register <- client

	// 6. Deliver events until the subscriber disconnects
	go client.deliverEvents()
	go client.watchDisconnect()
}
