package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"
	"github.com/cwrk-planet/study-room/pkg/errs"
	"github.com/cwrk-planet/study-room/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

type RoomReader interface {
	Get(ctx context.Context, id string) (*domain.Room, error)
	Recent(ctx context.Context, limit int) ([]domain.Room, error)
}

type Handler struct {
	rooms    RoomReader
	presence PresenceReader
}

func NewHandler(rooms RoomReader, presence PresenceReader) *Handler {
	return &Handler{rooms: rooms, presence: presence}
}

type RoomItem struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	URL           string        `json:"url"`
	CreatedAt     time.Time     `json:"created_at"`
	LastVisitedAt time.Time     `json:"last_visited_at"`
	Peers         []domain.Peer `json:"peers,omitempty"`
}

type RoomsListResponse struct {
	Items []RoomItem `json:"items"`
}

func toRoomItem(rm domain.Room) RoomItem {
	return RoomItem{
		ID:            rm.ID,
		Name:          rm.Name,
		URL:           "/room/" + url.PathEscape(rm.ID),
		CreatedAt:     rm.CreatedAt,
		LastVisitedAt: rm.LastVisitedAt,
	}
}

// GET /api/rooms?limit=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.Error(w, errs.ToHTTP(err), err.Error(), nil)
		return
	}

	rooms, err := h.rooms.Recent(r.Context(), limit)
	if err != nil {
		httputil.L(r.Context()).Error("handler.ListRooms", "err", err)
		httputil.Error(w, errs.ToHTTP(err), "failed to list rooms", nil)
		return
	}

	resp := RoomsListResponse{Items: make([]RoomItem, 0, len(rooms))}
	for _, rm := range rooms {
		resp.Items = append(resp.Items, toRoomItem(rm))
	}
	httputil.OK(w, resp)
}

// parseLimit reads ?limit=; the service clamps the value.
func parseLimit(s string) (int, error) {
	if s == "" {
		return 10, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("limit %q: %w", s, errs.ErrInvalidInput)
	}
	return n, nil
}

// GET /api/rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if v, err := url.PathUnescape(id); err == nil {
		id = v
	}

	room, err := h.rooms.Get(r.Context(), id)
	if err != nil {
		status := errs.ToHTTP(err)
		if status == http.StatusInternalServerError {
			httputil.L(r.Context()).Error("handler.GetRoom", "room", id, "err", err)
			httputil.Error(w, status, "failed to load room", nil)
			return
		}
		httputil.Error(w, status, err.Error(), map[string]any{"id": id})
		return
	}

	item := toRoomItem(*room)
	item.Peers = h.presence.Peers(room.ID)
	httputil.OK(w, item)
}
