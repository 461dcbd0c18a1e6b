package domain

import "time"

// Peer is a guest currently connected to a room. Presence is kept in memory only.
type Peer struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	RoomID      string    `json:"room_id"`
	JoinedAt    time.Time `json:"joined_at"`
}
