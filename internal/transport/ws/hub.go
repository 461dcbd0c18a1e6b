package ws

import (
	"sort"
	"sync"

	"github.com/cwrk-planet/study-room/internal/domain"
)

type Conn interface {
	Send(msg Message) error
	Close() error
	Peer() domain.Peer
}

// Hub tracks live connections per room.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{} // roomID -> set of connections
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[Conn]struct{})}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID := c.Peer().RoomID
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[Conn]struct{})
		h.rooms[roomID] = rs
	}
	rs[c] = struct{}{}
}

func (h *Hub) Remove(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID := c.Peer().RoomID
	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, c)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// Broadcast sends msg to every connection in the room; send errors are ignored
// and the failing connection is dropped by its own read loop.
func (h *Hub) Broadcast(roomID string, msg Message) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Send(msg)
	}
}

// Peers returns the guests online in the room, one entry per guest even when
// it has several tabs open, ordered by join time.
func (h *Hub) Peers(roomID string) []domain.Peer {
	h.mu.RLock()
	byID := make(map[string]domain.Peer, len(h.rooms[roomID]))
	for c := range h.rooms[roomID] {
		p := c.Peer()
		if prev, ok := byID[p.ID]; !ok || p.JoinedAt.Before(prev.JoinedAt) {
			byID[p.ID] = p
		}
	}
	h.mu.RUnlock()

	out := make([]domain.Peer, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// Online reports whether the guest still has a connection in the room.
func (h *Hub) Online(roomID, peerID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[roomID] {
		if c.Peer().ID == peerID {
			return true
		}
	}
	return false
}

// CloseAll closes every connection; used on shutdown since hijacked
// connections outlive http.Server.Shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var conns []Conn
	for _, rs := range h.rooms {
		for c := range rs {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
