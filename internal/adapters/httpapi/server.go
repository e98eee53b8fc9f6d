package httpapi

import (
	"errors"
	"net/http"

	"github.com/foodswipe/foodswipe-edge/internal/app/account"
	"github.com/foodswipe/foodswipe-edge/internal/app/discovery"
	"github.com/foodswipe/foodswipe-edge/internal/app/photos"
	clockport "github.com/foodswipe/foodswipe-edge/internal/ports/out/clock"
)

// Server holds the edge handlers' dependencies.
type Server struct {
	Photos    *photos.Loader
	Accounts  *account.Service
	Discovery *discovery.Service
	Clock     clockport.Clock

	Cookies CookieConfig
	// DefaultViewportWidth applies when a photo request carries no viewport hint.
	DefaultViewportWidth int
}

func NewServer(loader *photos.Loader, accounts *account.Service, disc *discovery.Service, clk clockport.Clock) *Server {
	return &Server{
		Photos:               loader,
		Accounts:             accounts,
		Discovery:            disc,
		Clock:                clk,
		Cookies:              CookieConfig{Secure: true},
		DefaultViewportWidth: 1024,
	}
}

// fail writes err and, when the session turned out to be dead, clears its cookie.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if isUnauthenticated(err) && sessionCookiePresent(r.Context()) {
		clearSessionCookie(w, s.Cookies)
	}
	writeAppError(w, r, err)
}

func isUnauthenticated(err error) bool {
	if errors.Is(err, account.ErrUnauthenticated) {
		return true
	}
	de := (*discovery.Error)(nil)
	return errors.As(err, &de) && de.Status == http.StatusUnauthorized
}
