package ui

import (
	"net/http"

	"github.com/a-h/templ"
)

const (
	SiteName  = "Virtual Study Room"
	Copyright = "© 2024 Virtual Study Room"
)

// Page is what a route contributes to the content region.
type Page struct {
	// Route is the name of the page route that produced the page.
	Route  string
	Title  string
	Status int
	Body   templ.Component
}

func (p Page) StatusCode() int {
	if p.Status == 0 {
		return http.StatusOK
	}
	return p.Status
}

// DocumentTitle is the <title> text: the page title followed by the site name.
func (p Page) DocumentTitle() string {
	if p.Title == "" {
		return SiteName
	}
	return p.Title + " · " + SiteName
}
