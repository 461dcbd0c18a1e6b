package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"
)

// RoomRepository is implemented by postgres.RoomRepository and memstore.RoomRepository.
type RoomRepository interface {
	Get(ctx context.Context, id string) (*domain.Room, error)
	Create(ctx context.Context, room *domain.Room) error
	Touch(ctx context.Context, id string, at time.Time) error
	Recent(ctx context.Context, limit int) ([]domain.Room, error)
}

type RoomService struct {
	roomRepo RoomRepository
	now      func() time.Time
}

func NewRoomService(roomRepo RoomRepository) *RoomService {
	return &RoomService{roomRepo: roomRepo, now: time.Now}
}

// Open returns the room behind /room/:id, creating it on the first visit,
// and records the visit.
func (s *RoomService) Open(ctx context.Context, id string) (*domain.Room, error) {
	if err := domain.ValidateRoomID(id); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	room, err := s.roomRepo.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		room = &domain.Room{
			ID:            id,
			Name:          domain.DefaultRoomName(id),
			CreatedAt:     now,
			LastVisitedAt: now,
		}
		if err := s.roomRepo.Create(ctx, room); err != nil {
			return nil, fmt.Errorf("roomRepo.Create: %w", err)
		}
		return room, nil
	case err != nil:
		return nil, fmt.Errorf("roomRepo.Get: %w", err)
	}

	if err := s.roomRepo.Touch(ctx, id, now); err != nil {
		return nil, fmt.Errorf("roomRepo.Touch: %w", err)
	}
	room.LastVisitedAt = now
	return room, nil
}

// Get returns the room without recording a visit.
func (s *RoomService) Get(ctx context.Context, id string) (*domain.Room, error) {
	if err := domain.ValidateRoomID(id); err != nil {
		return nil, err
	}
	return s.roomRepo.Get(ctx, id)
}

// Recent lists the most recently visited rooms, newest first.
func (s *RoomService) Recent(ctx context.Context, limit int) ([]domain.Room, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return s.roomRepo.Recent(ctx, limit)
}
