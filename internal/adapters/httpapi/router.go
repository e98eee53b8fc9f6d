package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/foodswipe/foodswipe-edge/internal/platform/logging"
)

// NewRouter constructs the edge HTTP router.
func NewRouter(s *Server, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(NewSessionMiddleware(s.Accounts, s.Cookies))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/photo", s.GetPhoto)
	r.Get("/photo/plan", s.GetPhotoPlan)

	r.Route("/session", func(r chi.Router) {
		r.Post("/login", s.Login)
		r.Post("/register", s.Register)
		r.Post("/google", s.GoogleLogin)
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
	})

	r.Get("/restaurants/nearby", s.ListNearbyRestaurants)
	r.Post("/places/search", s.SearchPlaces)
	r.Get("/places/details", s.GetPlaceDetails)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession)
		r.Get("/restaurants/{id}", s.GetRestaurant)
		r.Get("/favorites", s.ListFavorites)
		r.Get("/favorites/random", s.GetRandomFavorite)
		r.Put("/favorites/{id}", s.PutFavorite)
		r.Delete("/favorites/{id}", s.DeleteFavorite)
		r.Post("/favorites/{id}/toggle", s.ToggleFavorite)
	})
	return r
}
