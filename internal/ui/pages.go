package ui

import (
	"net/http"
	"net/url"

	"github.com/cwrk-planet/study-room/internal/domain"
)

type HomeProps struct {
	NewRoomURL string
	Recent     []domain.Room
}

func Home(p HomeProps) Page {
	return Page{Title: "Home", Body: homeView(p)}
}

type RoomProps struct {
	// ID is the identifier taken from the URL; it is always set.
	ID    string
	Room  *domain.Room
	Peers []domain.Peer
	// Notice replaces the room body when the room cannot be opened.
	Notice string
}

func Room(p RoomProps) Page {
	title := "Room " + p.ID
	status := http.StatusBadRequest
	if p.Room != nil {
		title = p.Room.Name
		status = http.StatusOK
	}
	return Page{Title: title, Status: status, Body: roomView(p, title)}
}

func NotFound(path string) Page {
	return Page{Title: "Not found", Status: http.StatusNotFound, Body: notFoundView(path)}
}

// ErrorPage is rendered inside the layout when a page cannot be built.
func ErrorPage() Page {
	return Page{Title: "Error", Status: http.StatusInternalServerError, Body: errorView()}
}

// RoomPath builds the /room/:id URL for id.
func RoomPath(id string) string {
	return "/room/" + url.PathEscape(id)
}
