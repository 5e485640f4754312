package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// SessionCookie carries the cart session id for browsers.
	SessionCookie = "cart_session"
	// SessionHeader carries the cart session id for API clients.
	SessionHeader = "X-Cart-Session"
)

type sessionKey struct{}

// CartSession resolves the cart session of every request. An id from the
// X-Cart-Session header wins over the cookie; a missing or malformed id
// starts a new session and sets the cookie.
func CartSession(ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := parseSession(r.Header.Get(SessionHeader))
			if !ok {
				if c, err := r.Cookie(SessionCookie); err == nil {
					id, ok = parseSession(c.Value)
				}
			}
			if !ok {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			w.Header().Set(SessionHeader, id)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

// WithSession stores the cart session id on ctx.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionFrom returns the cart session id stored on ctx.
func SessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func parseSession(v string) (string, bool) {
	if v == "" {
		return "", false
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
