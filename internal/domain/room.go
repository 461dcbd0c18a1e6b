package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxRoomIDLen bounds the identifier taken from /room/:id.
const MaxRoomIDLen = 128

type Room struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	CreatedAt     time.Time `db:"created_at"`
	LastVisitedAt time.Time `db:"last_visited_at"`
}

// ValidateRoomID checks an identifier extracted from a URL segment. Accepted
// ids are stored as postgres TEXT, which refuses NUL and invalid UTF-8.
func ValidateRoomID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidRoomID)
	case len(id) > MaxRoomIDLen:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidRoomID, MaxRoomIDLen)
	case strings.Contains(id, "/"):
		return fmt.Errorf("%w: contains '/'", ErrInvalidRoomID)
	case !utf8.ValidString(id):
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidRoomID)
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return fmt.Errorf("%w: contains a control character", ErrInvalidRoomID)
	}
	return nil
}

// DefaultRoomName is used for rooms created by visiting their URL.
func DefaultRoomName(id string) string {
	return "Study room " + id
}
