// Package realtime pushes cooking timer events to the signed-in user's
// browser tabs over websockets.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"pasta-logger/internal/cooking"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	pingInterval = 25 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 64
)

// Client is one websocket connection of a user.
type Client struct {
	userID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

// Hub fans events out to every connection of a user.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]map[*Client]struct{}
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.With().Str("component", "realtime-hub").Logger(),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if set := h.clients[c.userID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()

	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Clients returns how many connections the user has open.
func (h *Hub) Clients(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Broadcast sends payload as JSON to every connection of the user. Slow
// connections whose buffer is full miss the message.
func (h *Hub) Broadcast(userID uuid.UUID, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode realtime payload")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- msg:
		case <-c.done:
		default:
			h.logger.Warn().Str("user_id", userID.String()).Msg("realtime client too slow, dropping message")
		}
	}
}

// Sink returns a cooking.Sink that broadcasts to the user. It matches
// cooking.SinkFactory.
func (h *Hub) Sink(userID uuid.UUID) cooking.Sink {
	return cooking.SinkFunc(func(ev cooking.Event) {
		h.Broadcast(userID, ev)
	})
}

// Serve upgrades the request and streams the user's events until the
// client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	h.register(c)
	h.logger.Debug().Str("user_id", userID.String()).Msg("realtime client connected")

	go h.writeLoop(c)

	// The hijacked connection keeps the server's read deadline; replace it
	// with one that pongs extend.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// read loop ends on client close/error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(c)
			h.logger.Debug().Str("user_id", userID.String()).Msg("realtime client disconnected")
			return nil
		}
	}
}

func (h *Hub) writeLoop(c *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		h.unregister(c)
	}
}
