package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"
	"github.com/cwrk-planet/study-room/internal/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService() (*RoomService, *clock) {
	c := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	s := NewRoomService(memstore.NewRoomRepository())
	s.now = c.now
	return s, c
}

func TestOpen_CreatesOnFirstVisit(t *testing.T) {
	s, c := newTestService()
	ctx := context.Background()

	room, err := s.Open(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", room.ID)
	assert.Equal(t, "Study room 42", room.Name)
	assert.Equal(t, c.t, room.CreatedAt)
	assert.Equal(t, c.t, room.LastVisitedAt)
}

func TestOpen_TouchesExistingRoom(t *testing.T) {
	s, c := newTestService()
	ctx := context.Background()

	first, err := s.Open(ctx, "42")
	require.NoError(t, err)

	c.t = c.t.Add(time.Hour)
	again, err := s.Open(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
	assert.Equal(t, c.t, again.LastVisitedAt)

	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, c.t, got.LastVisitedAt)
}

func TestOpen_RejectsInvalidID(t *testing.T) {
	s, _ := newTestService()

	_, err := s.Open(context.Background(), "a/b")
	require.ErrorIs(t, err, domain.ErrInvalidRoomID)
}

func TestGet_NotFound(t *testing.T) {
	s, _ := newTestService()

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRecent_NewestFirstAndClamped(t *testing.T) {
	s, c := newTestService()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		c.t = c.t.Add(time.Minute)
		_, err := s.Open(ctx, id)
		require.NoError(t, err)
	}
	c.t = c.t.Add(time.Minute)
	_, err := s.Open(ctx, "a")
	require.NoError(t, err)

	rooms, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "a", rooms[0].ID)
	assert.Equal(t, "c", rooms[1].ID)

	rooms, err = s.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rooms, 3)
}

type failingRepo struct{ memstore.RoomRepository }

func (*failingRepo) Get(context.Context, string) (*domain.Room, error) {
	return nil, errors.New("db down")
}

func TestOpen_WrapsStorageErrors(t *testing.T) {
	s := NewRoomService(&failingRepo{})

	_, err := s.Open(context.Background(), "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roomRepo.Get")
	assert.NotErrorIs(t, err, domain.ErrRoomNotFound)
}
