package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/cwrk-planet/study-room/internal/domain"
	"github.com/cwrk-planet/study-room/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	cases := map[error]int{
		nil:                    http.StatusOK,
		errs.ErrInvalidInput:   http.StatusBadRequest,
		errs.ErrUnauthorized:   http.StatusUnauthorized,
		errs.ErrUnavailable:    http.StatusServiceUnavailable,
		domain.ErrRoomNotFound: http.StatusNotFound,
		fmt.Errorf("service: %w", domain.ErrInvalidRoomID): http.StatusBadRequest,
		errors.New("boom"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, errs.ToHTTP(err), "%v", err)
	}
}
