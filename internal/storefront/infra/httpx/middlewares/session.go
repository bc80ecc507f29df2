package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/jcmexdev/storefront/internal/storefront/session"
)

// CookieName names the session cookie.
const CookieName = "storefront_session"

type contextKey string

const sessionKey contextKey = "session"

// Session resolves the visitor's session from its cookie, starting a new one
// when the cookie is missing or the session expired.
func Session(reg *session.Registry, ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s *session.Session
			if c, err := r.Cookie(CookieName); err == nil {
				s, _ = reg.Get(c.Value)
			}
			if s == nil {
				s = reg.Create(r.Context())
			}

			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    s.ID,
				Path:     "/",
				MaxAge:   int(ttl / time.Second),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by Session, or nil.
func SessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}
