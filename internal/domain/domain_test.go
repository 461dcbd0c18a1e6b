package domain_test

import (
	"strings"
	"testing"

	"github.com/cwrk-planet/study-room/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestValidateRoomID(t *testing.T) {
	assert.NoError(t, domain.ValidateRoomID("42"))
	assert.NoError(t, domain.ValidateRoomID("math club"))
	assert.NoError(t, domain.ValidateRoomID("café"))

	invalid := []string{
		"", "   ", "a/b",
		strings.Repeat("x", domain.MaxRoomIDLen+1),
		"\xff", "a\x00b", "line\nbreak",
	}
	for _, id := range invalid {
		assert.ErrorIs(t, domain.ValidateRoomID(id), domain.ErrInvalidRoomID, id)
	}
}
