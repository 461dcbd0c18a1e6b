package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"
)

// RoomRepository keeps rooms in process memory. Used when no postgres DSN is
// configured and in tests.
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{rooms: make(map[string]domain.Room)}
}

func (r *RoomRepository) Get(_ context.Context, id string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return &rm, nil
}

// Create keeps the existing record when two first visits race, only moving
// its last visit forward.
func (r *RoomRepository) Create(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rooms[room.ID]; ok {
		existing.LastVisitedAt = room.LastVisitedAt
		r.rooms[room.ID] = existing
		*room = existing
		return nil
	}
	r.rooms[room.ID] = *room
	return nil
}

func (r *RoomRepository) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	rm.LastVisitedAt = at
	r.rooms[id] = rm
	return nil
}

func (r *RoomRepository) Recent(_ context.Context, limit int) ([]domain.Room, error) {
	r.mu.RLock()
	out := make([]domain.Room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, rm)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastVisitedAt.Equal(out[j].LastVisitedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].LastVisitedAt.After(out[j].LastVisitedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
