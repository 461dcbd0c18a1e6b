package ws

import "github.com/cwrk-planet/study-room/internal/domain"

// Event types sent over /ws/rooms/{id}.
const (
	TypeState      = "state"       // snapshot of the peers online
	TypePeerJoined = "peer_joined" // a guest connected
	TypePeerLeft   = "peer_left"   // a guest disconnected
	TypeChat       = "chat"        // chat message, echoed to the sender too
)

// MaxChatLen bounds a chat message in bytes after trimming.
const MaxChatLen = 2000

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type StatePayload struct {
	RoomID string        `json:"room_id"`
	Peers  []domain.Peer `json:"peers"`
}

type PeerEventPayload struct {
	RoomID string        `json:"room_id"`
	Peer   domain.Peer   `json:"peer"`
	Peers  []domain.Peer `json:"peers"`
}

type ChatPayload struct {
	RoomID      string `json:"room_id"`
	PeerID      string `json:"peer_id"`
	DisplayName string `json:"display_name"`
	Message     string `json:"message"`

	MsgID  string `json:"msg_id,omitempty"`
	TSUnix int64  `json:"ts_unix,omitempty"`
}
