package httpmw

import (
	"context"
	"net/http"
	"time"

	"github.com/cwrk-planet/study-room/internal/domain"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const GuestCookieName = "study_guest"

type ctxKey string

const ctxKeyGuest ctxKey = "guest"

// GuestSessions issues and reads the signed guest cookie.
type GuestSessions struct {
	codec  *securecookie.SecureCookie
	maxAge time.Duration
	secure bool
}

// NewGuestSessions expects a hash key of at least 32 bytes; blockKey may be
// empty to sign without encrypting.
func NewGuestSessions(hashKey, blockKey []byte, maxAge time.Duration, secure bool) *GuestSessions {
	if len(blockKey) == 0 {
		blockKey = nil
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(maxAge.Seconds()))
	return &GuestSessions{codec: codec, maxAge: maxAge, secure: secure}
}

// Middleware puts the guest into the request context, issuing a new identity
// when the cookie is missing or fails verification.
func (g *GuestSessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guest, ok := g.read(r)
		if !ok {
			guest = NewGuest()
			if err := g.write(w, guest); err != nil {
				http.Error(w, "guest session unavailable", http.StatusInternalServerError)
				return
			}
		}
		ctx := context.WithValue(r.Context(), ctxKeyGuest, guest)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *GuestSessions) read(r *http.Request) (domain.Guest, bool) {
	c, err := r.Cookie(GuestCookieName)
	if err != nil {
		return domain.Guest{}, false
	}
	var guest domain.Guest
	if err := g.codec.Decode(GuestCookieName, c.Value, &guest); err != nil {
		return domain.Guest{}, false
	}
	if guest.ID == "" {
		return domain.Guest{}, false
	}
	return guest, true
}

func (g *GuestSessions) write(w http.ResponseWriter, guest domain.Guest) error {
	encoded, err := g.codec.Encode(GuestCookieName, guest)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     GuestCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(g.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Encode is exposed for tests and tooling that need a valid cookie value.
func (g *GuestSessions) Encode(guest domain.Guest) (string, error) {
	return g.codec.Encode(GuestCookieName, guest)
}

func NewGuest() domain.Guest {
	id := uuid.NewString()
	return domain.Guest{ID: id, Name: "Guest-" + id[:4]}
}

func GuestFromCtx(ctx context.Context) (domain.Guest, bool) {
	g, ok := ctx.Value(ctxKeyGuest).(domain.Guest)
	return g, ok
}

// GuestFromRequest adapts GuestFromCtx to ws.IdentifyFunc.
func GuestFromRequest(r *http.Request) (domain.Guest, bool) {
	return GuestFromCtx(r.Context())
}
