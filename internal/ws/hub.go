// Package ws pushes state and content changes to connected app shells. The
// auth reconciler feeds it directly; community content notifications arrive
// through a redis channel so writes from other instances also reach clients.
package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Hub struct {
	logger *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	broadcast chan Message
	done      chan struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:    logger,
		conns:     map[*websocket.Conn]struct{}{},
		broadcast: make(chan Message, 64),
		done:      make(chan struct{}),
	}
}

// Run delivers broadcast messages until Stop. Run in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case msg := <-h.broadcast:
			h.deliver(msg)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Stop() { close(h.done) }

// Broadcast queues a message for every connected client. Drops the message
// when the queue is full rather than blocking the caller; clients resync from
// the state endpoint on reconnect.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message", zap.String("type", msg.Type))
	}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *Hub) deliver(msg Message) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			h.logger.Debug("client write failed, dropping connection", zap.Error(err))
			h.Unregister(c)
		}
	}
}
