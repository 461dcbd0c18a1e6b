package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	var rm domain.Room
	query := `SELECT id, name, created_at, last_visited_at FROM study_rooms WHERE id=$1`
	err := r.db.QueryRow(ctx, query, id).
		Scan(&rm.ID, &rm.Name, &rm.CreatedAt, &rm.LastVisitedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// Create inserts the room; on a concurrent first visit the stored row wins
// and is scanned back into room.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO study_rooms (id, name, created_at, last_visited_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET last_visited_at = EXCLUDED.last_visited_at
		RETURNING name, created_at, last_visited_at`
	return r.db.QueryRow(ctx, query, room.ID, room.Name, room.CreatedAt, room.LastVisitedAt).
		Scan(&room.Name, &room.CreatedAt, &room.LastVisitedAt)
}

func (r *RoomRepository) Touch(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE study_rooms SET last_visited_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) Recent(ctx context.Context, limit int) ([]domain.Room, error) {
	query := `
		SELECT id, name, created_at, last_visited_at
		FROM study_rooms
		ORDER BY last_visited_at DESC, id DESC
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0, limit)
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.CreatedAt, &rm.LastVisitedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	return rooms, rows.Err()
}
