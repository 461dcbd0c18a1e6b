package httpmw_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpmw "github.com/cwrk-planet/study-room/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hashKey = []byte("0123456789abcdef0123456789abcdef")

func guestHandler(t *testing.T, gs *httpmw.GuestSessions, seen *string) http.Handler {
	t.Helper()
	return gs.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, ok := httpmw.GuestFromRequest(r)
		require.True(t, ok)
		*seen = g.ID
	}))
}

func TestGuestSessions_IssuesAndReusesCookie(t *testing.T) {
	gs := httpmw.NewGuestSessions(hashKey, nil, time.Hour, false)
	var seen string
	h := guestHandler(t, gs, &seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	first := seen
	require.NotEmpty(t, first)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, httpmw.GuestCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/room/42", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, first, seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestGuestSessions_ReplacesTamperedCookie(t *testing.T) {
	gs := httpmw.NewGuestSessions(hashKey, nil, time.Hour, false)
	var seen string
	h := guestHandler(t, gs, &seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: httpmw.GuestCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, seen)
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestNewGuest(t *testing.T) {
	g := httpmw.NewGuest()
	assert.Len(t, g.ID, 36)
	assert.True(t, strings.HasPrefix(g.Name, "Guest-"))
}

func TestMetrics_LabelsByPattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := httpmw.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/rooms/"+id, nil))
	}
	m.ObservePage("home", http.StatusOK)

	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PageRenders.WithLabelValues("home", "200")))
}
