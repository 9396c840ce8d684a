// Package live pushes tournament change notices to connected browsers over
// websockets. Each tournament is a room; clients join the room of the
// tournament page they have open.
package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dosada05/clubhub/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// Message is the frame sent to clients.
type Message struct {
	Type    string `json:"type"`              // например "signup.updated"
	Payload any    `json:"payload"`
	RoomID  string `json:"room_id,omitempty"`
}

// RoomID returns the room name for a tournament.
func RoomID(tournamentID string) string {
	return "tournament_" + tournamentID
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	rooms map[string]map[*Client]struct{}
	mu    sync.RWMutex

	logger      *slog.Logger
	connections prometheus.Gauge
}

// NewHub creates a hub. connections may be nil.
func NewHub(logger *slog.Logger, connections prometheus.Gauge) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		rooms:       make(map[string]map[*Client]struct{}),
		logger:      logger,
		connections: connections,
	}
}

// Run processes joins and leaves until ctx is cancelled, then closes every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for room, clients := range h.rooms {
				for c := range clients {
					c.closeSend()
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[c.room]; !ok {
				h.rooms[c.room] = make(map[*Client]struct{})
			}
			h.rooms[c.room][c] = struct{}{}
			n := len(h.rooms[c.room])
			h.mu.Unlock()
			h.gaugeAdd(1)
			h.logger.Debug("live client joined", "room", c.room, "uid", c.uid, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[c.room]; ok {
				if _, ok := clients[c]; ok {
					c.closeSend()
					delete(clients, c)
					if len(clients) == 0 {
						delete(h.rooms, c.room)
					}
					h.gaugeAdd(-1)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("live client left", "room", c.room, "uid", c.uid)
		}
	}
}

func (h *Hub) gaugeAdd(v float64) {
	if h.connections != nil {
		h.connections.Add(v)
	}
}

// Broadcast sends an event to everyone watching the tournament. Slow clients
// whose buffer is full miss the frame.
func (h *Hub) Broadcast(tournamentID, event string, payload any) {
	room := RoomID(tournamentID)
	msg, err := json.Marshal(Message{Type: event, Payload: payload, RoomID: room})
	if err != nil {
		h.logger.Error("failed to marshal live message", "room", room, "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if !c.trySend(msg) {
			h.logger.Warn("live client buffer full, frame dropped", "room", room, "uid", c.uid)
		}
	}
}

// Clients returns how many clients watch the tournament.
func (h *Hub) Clients(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[RoomID(tournamentID)])
}

// Attach joins an upgraded connection to the tournament room and starts its
// pumps. The connection is dropped when uid signs out.
func (h *Hub) Attach(conn *websocket.Conn, tournamentID, uid string, state *session.State) {
	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		room: RoomID(tournamentID),
		uid:  uid,
	}
	if state != nil {
		// закрытие conn завершает readPump, тот сам снимает клиента с хаба
		c.unsubscribe = state.Subscribe(uid, func(e session.Event) {
			if !e.SignedIn {
				_ = conn.Close()
			}
		})
	}

	select {
	case h.register <- c:
	case <-h.done:
		c.release()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Client is one websocket connection in a room.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	room        string
	uid         string
	unsubscribe func()

	mu     sync.Mutex
	closed bool
}

func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

func (c *Client) release() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	_ = c.conn.Close()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.release()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// входящие сообщения клиентов игнорируются
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("live client read error", "room", c.room, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// один JSON на фрейм, клиенты парсят каждое сообщение отдельно
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.Debug("live client write failed", "room", c.room, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
