// README: WebSocket hub fanning live location samples out to subscribers.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"roam/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one WebSocket connection subscribed to a single vehicle's
// location stream.
type Client struct {
	VehicleID types.ID
	Conn      *websocket.Conn
	Send      chan []byte
	Hub       *Hub
}

// Hub tracks the active clients grouped by the vehicle they watch.
type Hub struct {
	clients    map[types.ID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		clients:    make(map[types.ID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// Run processes register/unregister events. Call it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.VehicleID] == nil {
				h.clients[client.VehicleID] = make(map[*Client]bool)
			}
			h.clients[client.VehicleID][client] = true
			h.mu.Unlock()
			h.log.Debugw("ws client subscribed", "vehicle_id", client.VehicleID)

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.VehicleID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.Send)
					if len(set) == 0 {
						delete(h.clients, client.VehicleID)
					}
				}
			}
			h.mu.Unlock()
			h.log.Debugw("ws client unsubscribed", "vehicle_id", client.VehicleID)
		}
	}
}

// BroadcastVehicle sends a payload to every client watching the vehicle.
// Slow clients are skipped rather than allowed to stall the sender.
func (h *Hub) BroadcastVehicle(vehicleID types.ID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[vehicleID] {
		select {
		case client.Send <- payload:
		default:
			h.log.Warnw("ws client send buffer full, dropping sample", "vehicle_id", vehicleID)
		}
	}
}

// Subscribers returns the number of clients watching a vehicle.
func (h *Hub) Subscribers(vehicleID types.ID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[vehicleID])
}

// Serve upgrades the request and pumps the vehicle's stream until the
// peer disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, vehicleID types.ID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("ws upgrade failed", "error", err)
		return
	}

	client := &Client{
		VehicleID: vehicleID,
		Conn:      conn,
		Send:      make(chan []byte, 64),
		Hub:       h,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump discards inbound frames; the stream is one-way. Its job is to
// notice the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
