package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SnapshotHub fans state snapshots out to connected dashboard sockets.
// Broadcast never blocks; when the queue is full the oldest pending
// snapshot is dropped since only the latest one matters.
type SnapshotHub struct {
	mu      sync.Mutex
	writeMu sync.Mutex
	clients map[*websocket.Conn]bool
	ch      chan interface{}
}

func NewSnapshotHub() *SnapshotHub {
	return &SnapshotHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan interface{}, 16),
	}
}

func (h *SnapshotHub) Run(ctx context.Context) {
	for {
		select {
		case payload := <-h.ch:
			h.send(payload)
		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

func (h *SnapshotHub) Broadcast(payload interface{}) {
	for {
		select {
		case h.ch <- payload:
			return
		default:
		}
		select {
		case <-h.ch:
		default:
		}
	}
}

func (h *SnapshotHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

// Join registers conn and sends it initial() as its first message. The
// client is registered before initial is evaluated and no broadcast is
// written in between, so nothing published after the snapshot is missed.
func (h *SnapshotHub) Join(conn *websocket.Conn, initial func() interface{}) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.Add(conn)
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(initial()); err != nil {
		h.Remove(conn)
		return err
	}
	return nil
}

func (h *SnapshotHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *SnapshotHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *SnapshotHub) send(payload interface{}) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("snapshot push: %v", err)
			h.Remove(conn)
			_ = conn.Close()
		}
	}
}

func (h *SnapshotHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		_ = conn.Close()
		delete(h.clients, conn)
	}
}
