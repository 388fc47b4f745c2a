package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/samdwyer/cardclash/internal/battle"
)

// Event types pushed to websocket clients.
const (
	EventNotification = "notification"
	EventView         = "view"
	EventState        = "state"
	EventError        = "error"
)

// Command types accepted from websocket clients.
const (
	CommandPlayCard    = "play_card"
	CommandEndTurn     = "end_turn"
	CommandStartBattle = "start_battle"
	CommandNewBattle   = "new_battle"
)

const (
	sendBuffer = 64
	writeWait  = 5 * time.Second
)

// Event is one outbound websocket message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Command is one inbound websocket message.
type Command struct {
	Type  string `json:"type"`
	Index int    `json:"index,omitempty"`
	Level int    `json:"level,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is one websocket connection. Writes go through send so a slow
// reader never blocks the broadcaster.
type client struct {
	ws   *websocket.Conn
	send chan []byte
}

// Hub tracks websocket clients and fans battle events out to them. It is
// the engine's Notifier and Navigator in the server.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool

	handle func(Command) error
	logger *zap.Logger
}

// NewHub creates a hub with no clients.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[*client]bool), logger: logger}
}

// OnCommand sets the handler for inbound commands.
func (h *Hub) OnCommand(fn func(Command) error) {
	h.mu.Lock()
	h.handle = fn
	h.mu.Unlock()
}

// Notify implements battle.Notifier.
func (h *Hub) Notify(n battle.Notification) {
	h.Broadcast(Event{Type: EventNotification, Data: n})
}

// SetView implements battle.Navigator.
func (h *Hub) SetView(view battle.View) {
	h.Broadcast(Event{Type: EventView, Data: gin.H{"view": view}})
}

// PublishState pushes a state snapshot to every client.
func (h *Hub) PublishState(s battle.State) {
	h.Broadcast(Event{Type: EventState, Data: s})
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev to every client. Clients whose buffer is full are
// dropped.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow websocket client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ServeWS upgrades the request and serves the connection until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{ws: ws, send: make(chan []byte, sendBuffer)}
	h.register(c)
	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// readLoop decodes commands until the connection fails.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		c.ws.Close()
	}()

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			h.reply(c, Event{Type: EventError, Data: gin.H{"error": "bad command"}})
			continue
		}

		h.mu.RLock()
		handle := h.handle
		h.mu.RUnlock()
		if handle == nil {
			continue
		}
		if err := handle(cmd); err != nil {
			h.reply(c, Event{Type: EventError, Data: gin.H{"error": err.Error()}})
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	for data := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			c.ws.Close()
			return
		}
	}
	_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// reply sends ev to one client only.
func (h *Hub) reply(c *client, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
