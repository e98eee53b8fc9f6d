package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/foodswipe/foodswipe-edge/internal/app/account"
	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/platform/logging"
)

const SessionCookieName = "sid"

type CookieConfig struct {
	Secure bool
}

// NewSessionMiddleware resolves the session cookie and stores the session in request
// context. It never rejects a request; RequireSession does that.
func NewSessionMiddleware(accounts *account.Service, cookies CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := withSessionCookie(r.Context(), true)
			sess, err := accounts.Lookup(ctx, domain.SessionID(c.Value))
			switch {
			case err == nil:
				ctx = account.WithSession(ctx, sess)
			case errors.Is(err, account.ErrUnauthenticated):
				clearSessionCookie(w, cookies)
			default:
				logging.FromContext(ctx).Error("session lookup failed", "err", err)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a live session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := account.SessionFromContext(r.Context()); !ok {
			writeError(w, r, http.StatusUnauthorized, account.ErrUnauthenticated.Code, account.ErrUnauthenticated.Message, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func setSessionCookie(w http.ResponseWriter, cookies CookieConfig, s domain.Session) {
	c := &http.Cookie{
		Name:     SessionCookieName,
		Value:    string(s.ID),
		Path:     "/",
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if !s.ExpiresAt.IsZero() {
		c.Expires = s.ExpiresAt
	}
	http.SetCookie(w, c)
}

func clearSessionCookie(w http.ResponseWriter, cookies CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
