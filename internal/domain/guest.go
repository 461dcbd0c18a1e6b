package domain

// Guest is an anonymous visitor identified by a signed cookie.
type Guest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
