package restaurantapi

import (
	"context"
	"errors"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
)

// AuthResult is returned by the credential exchanges of the remote auth API.
type AuthResult struct {
	Token string
	User  domain.User
}

// Auth is the remote /api/auth surface.
type Auth interface {
	Register(ctx context.Context, name, email, password string) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
	GoogleLogin(ctx context.Context, idToken string) (AuthResult, error)
	Me(ctx context.Context) (domain.User, error)
}

// TextSearch is the body of POST /api/places/textsearch.
type TextSearch struct {
	TextQuery string
	Fields    []string
}

// Places is the remote /api/places surface (photos excluded, see photofetch).
type Places interface {
	TextSearch(ctx context.Context, q TextSearch) (domain.Place, error)
	Details(ctx context.Context, id domain.PlaceID) (domain.PlaceDetail, error)
}

type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	Category  domain.Category
	// RadiusMeters is omitted from the request when zero.
	RadiusMeters int
}

// Restaurants is the remote /api/restaurants surface.
type Restaurants interface {
	Nearby(ctx context.Context, q NearbyQuery) ([]domain.Restaurant, error)
	Get(ctx context.Context, id domain.RestaurantID) (domain.RestaurantDetail, error)
}

// Favorites is the remote /api/favorites surface.
type Favorites interface {
	List(ctx context.Context) ([]domain.Restaurant, error)
	Add(ctx context.Context, id domain.RestaurantID) error
	Remove(ctx context.Context, id domain.RestaurantID) error
	Random(ctx context.Context) (domain.Restaurant, error)
}

// StatusError is implemented by errors that carry the remote API's HTTP status.
type StatusError interface {
	error
	StatusCode() int
	// RemoteMessage is the error message from the response body, if any.
	RemoteMessage() string
}

// StatusOf returns the remote HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se StatusError
	if errors.As(err, &se) {
		return se.StatusCode()
	}
	return 0
}

// MessageOf returns the remote error message carried by err, or "".
func MessageOf(err error) string {
	var se StatusError
	if errors.As(err, &se) {
		return se.RemoteMessage()
	}
	return ""
}
