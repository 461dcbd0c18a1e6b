package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/cwrk-planet/study-room/internal/domain"
	"github.com/cwrk-planet/study-room/internal/routing"
	"github.com/cwrk-planet/study-room/internal/ui"
	"github.com/cwrk-planet/study-room/pkg/httputil"

	"github.com/google/uuid"
)

// Page route names, also used as metric labels.
const (
	RouteHome     = "home"
	RouteRoom     = "room"
	RouteNotFound = "not_found"
)

// PageBuilder produces the content region for a matched page route.
type PageBuilder func(r *http.Request, params routing.Params) (ui.Page, error)

type RoomOpener interface {
	Open(ctx context.Context, id string) (*domain.Room, error)
	Recent(ctx context.Context, limit int) ([]domain.Room, error)
}

type PresenceReader interface {
	Peers(roomID string) []domain.Peer
}

type PageObserver interface {
	ObservePage(route string, status int)
}

// Shell renders every page URL: Header, the routed content and Footer.
type Shell struct {
	table    *routing.Table[PageBuilder]
	rooms    RoomOpener
	presence PresenceReader
	observer PageObserver
	newRoom  func() string
}

func NewShell(rooms RoomOpener, presence PresenceReader, observer PageObserver) *Shell {
	s := &Shell{
		rooms:    rooms,
		presence: presence,
		observer: observer,
		newRoom:  func() string { return uuid.NewString()[:8] },
	}
	s.table = PageTable(s.home, s.room, s.notFound)
	return s
}

// PageTable declares the page routes in evaluation order. The catch-all must
// stay last; routing.MustNew refuses any other order.
func PageTable(home, room, notFound PageBuilder) *routing.Table[PageBuilder] {
	return routing.MustNew(
		routing.Route[PageBuilder]{Name: RouteHome, Path: "/", Exact: true, Handler: home},
		routing.Route[PageBuilder]{Name: RouteRoom, Path: "/room/:id", Handler: room},
		routing.Route[PageBuilder]{Name: RouteNotFound, Handler: notFound},
	)
}

func (s *Shell) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m := s.table.Match(r.URL.EscapedPath())

	page, err := m.Route.Handler(r, m.Params)
	if err != nil {
		httputil.L(r.Context()).Error("build page failed",
			"route", m.Route.Name, "err", err)
		page = ui.ErrorPage()
	}
	page.Route = m.Route.Name

	status := page.StatusCode()
	if s.observer != nil {
		s.observer.ObservePage(page.Route, status)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	layout := ui.Layout(page, ui.Header(ui.RoomPath(s.newRoom())), ui.Footer())
	if err := layout.Render(r.Context(), w); err != nil {
		httputil.L(r.Context()).Warn("render page failed", "route", page.Route, "err", err)
	}
}

func (s *Shell) home(r *http.Request, _ routing.Params) (ui.Page, error) {
	recent, err := s.rooms.Recent(r.Context(), 10)
	if err != nil {
		return ui.Page{}, err
	}
	return ui.Home(ui.HomeProps{
		NewRoomURL: ui.RoomPath(s.newRoom()),
		Recent:     recent,
	}), nil
}

func (s *Shell) room(r *http.Request, params routing.Params) (ui.Page, error) {
	id := params.Get("id")

	room, err := s.rooms.Open(r.Context(), id)
	if errors.Is(err, domain.ErrInvalidRoomID) {
		return ui.Room(ui.RoomProps{ID: id, Notice: "This room id cannot be used. Pick another link."}), nil
	}
	if err != nil {
		return ui.Page{}, err
	}

	return ui.Room(ui.RoomProps{
		ID:    id,
		Room:  room,
		Peers: s.presence.Peers(room.ID),
	}), nil
}

func (s *Shell) notFound(r *http.Request, _ routing.Params) (ui.Page, error) {
	return ui.NotFound(r.URL.Path), nil
}
