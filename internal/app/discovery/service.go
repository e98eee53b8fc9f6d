package discovery

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/restaurantapi"
)

var (
	locationFields = []string{"id", "location", "formattedAddress", "displayName"}
	searchFields   = []string{"id", "displayName", "formattedAddress", "photos"}
)

type Service struct {
	places      restaurantapi.Places
	restaurants restaurantapi.Restaurants
	favorites   restaurantapi.Favorites

	// PhotoPath is the edge route that serves photos by reference.
	PhotoPath string
}

func NewService(places restaurantapi.Places, restaurants restaurantapi.Restaurants, favorites restaurantapi.Favorites) *Service {
	return &Service{
		places:      places,
		restaurants: restaurants,
		favorites:   favorites,
		PhotoPath:   "/photo",
	}
}

// Nearby resolves a location and lists restaurants around it.
func (s *Service) Nearby(ctx context.Context, q NearbyQuery) (NearbyResult, error) {
	cat, ok := domain.ParseCategory(strings.TrimSpace(q.Category))
	if !ok {
		return NearbyResult{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid category",
			Details: map[string]any{"category": "must be one of " + joinCategories()},
		}
	}
	loc, err := s.resolveLocation(ctx, q)
	if err != nil {
		return NearbyResult{}, err
	}

	rs, err := s.restaurants.Nearby(ctx, restaurantapi.NearbyQuery{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Category:  cat,
	})
	if err != nil {
		return NearbyResult{}, mapRemoteError(err, "")
	}
	return NearbyResult{Location: loc, Category: cat, Restaurants: s.cards(rs)}, nil
}

func (s *Service) resolveLocation(ctx context.Context, q NearbyQuery) (domain.Location, error) {
	fallback := domain.DefaultLocation
	if (q.Latitude == nil) != (q.Longitude == nil) {
		return domain.Location{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid coordinates",
			Details: map[string]any{"lat,lng": "must be given together"},
		}
	}
	if q.Latitude != nil {
		lat, lng := *q.Latitude, *q.Longitude
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return domain.Location{}, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "invalid coordinates",
				Details: map[string]any{"lat,lng": "out of range"},
			}
		}
		fallback = domain.Location{Latitude: lat, Longitude: lng}
	}

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return fallback, nil
	}
	p, err := s.places.TextSearch(ctx, restaurantapi.TextSearch{TextQuery: text, Fields: locationFields})
	if err != nil {
		if restaurantapi.StatusOf(err) == 404 {
			return fallback, nil
		}
		return domain.Location{}, mapRemoteError(err, "")
	}
	if p.Location == nil || (p.Location.Latitude == 0 && p.Location.Longitude == 0) {
		return fallback, nil
	}
	loc := *p.Location
	if loc.Label == "" {
		loc.Label = text
	}
	return loc, nil
}

// ToggleFavorite flips the favorite state of a restaurant and returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, id domain.RestaurantID, currentlyFavorite bool) (bool, error) {
	if currentlyFavorite {
		return false, s.RemoveFavorite(ctx, id)
	}
	return true, s.AddFavorite(ctx, id)
}

func (s *Service) AddFavorite(ctx context.Context, id domain.RestaurantID) error {
	if err := s.favorites.Add(ctx, id); err != nil {
		return mapRemoteError(err, "RESTAURANT_NOT_FOUND")
	}
	return nil
}

// RemoveFavorite is idempotent: removing a restaurant that is not a favorite succeeds.
func (s *Service) RemoveFavorite(ctx context.Context, id domain.RestaurantID) error {
	if err := s.favorites.Remove(ctx, id); err != nil && restaurantapi.StatusOf(err) != 404 {
		return mapRemoteError(err, "")
	}
	return nil
}

func (s *Service) Favorites(ctx context.Context) ([]RestaurantCard, error) {
	rs, err := s.favorites.List(ctx)
	if err != nil {
		return nil, mapRemoteError(err, "")
	}
	return s.cards(rs), nil
}

func (s *Service) RandomFavorite(ctx context.Context) (RestaurantCard, error) {
	r, err := s.favorites.Random(ctx)
	if err != nil {
		if restaurantapi.StatusOf(err) == 404 {
			return RestaurantCard{}, ErrNoFavorites
		}
		return RestaurantCard{}, mapRemoteError(err, "")
	}
	return s.card(r, ModalPhotoWidth), nil
}

func (s *Service) Restaurant(ctx context.Context, id domain.RestaurantID) (RestaurantView, error) {
	d, err := s.restaurants.Get(ctx, id)
	if err != nil {
		return RestaurantView{}, mapRemoteError(err, "RESTAURANT_NOT_FOUND")
	}
	v := RestaurantView{
		RestaurantDetail: d,
		MapsURL:          domain.MapsURL(d.Name, d.PlaceID),
		HeroURL:          s.photoURL(d.PhotoReference, HeroPhotoWidth),
	}
	if d.Details != nil {
		for _, ref := range d.Details.Photos {
			if u := s.photoURL(ref, GalleryPhotoWidth); u != "" {
				v.GalleryURLs = append(v.GalleryURLs, u)
			}
		}
	}
	return v, nil
}

func (s *Service) SearchPlaces(ctx context.Context, text string) (PlaceView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return PlaceView{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid search query",
			Details: map[string]any{"textQuery": "must be non-empty"},
		}
	}
	p, err := s.places.TextSearch(ctx, restaurantapi.TextSearch{TextQuery: text, Fields: searchFields})
	if err != nil {
		return PlaceView{}, mapRemoteError(err, "PLACE_NOT_FOUND")
	}
	v := PlaceView{Place: p}
	for _, ph := range p.Photos {
		if u := s.photoURL(ph.Reference, ModalPhotoWidth); u != "" {
			v.PhotoURLs = append(v.PhotoURLs, u)
		}
	}
	return v, nil
}

func (s *Service) PlaceDetail(ctx context.Context, id domain.PlaceID) (PlaceDetailView, error) {
	if strings.TrimSpace(string(id)) == "" {
		return PlaceDetailView{}, &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "invalid placeId",
			Details: map[string]any{"placeId": "must be non-empty"},
		}
	}
	d, err := s.places.Details(ctx, id)
	if err != nil {
		return PlaceDetailView{}, mapRemoteError(err, "PLACE_NOT_FOUND")
	}
	v := PlaceDetailView{PlaceDetail: d, MapsURL: domain.MapsURL(d.Name, d.PlaceID)}
	for _, ph := range d.Photos {
		if u := s.photoURL(ph.Reference, GalleryPhotoWidth); u != "" {
			v.PhotoURLs = append(v.PhotoURLs, u)
		}
	}
	return v, nil
}

func (s *Service) cards(rs []domain.Restaurant) []RestaurantCard {
	out := make([]RestaurantCard, 0, len(rs))
	for _, r := range rs {
		out = append(out, s.card(r, CardPhotoWidth))
	}
	return out
}

// card builds a restaurant card. Stored restaurants (those with an ID) serve their
// photo through the restaurants photo endpoint, which the photo route fetches once,
// verbatim; unsaved places keep the opaque reference and its cached/standard fallback.
func (s *Service) card(r domain.Restaurant, width int) RestaurantCard {
	ref := r.PhotoReference
	if r.ID != nil && ref != "" && !ref.FullyQualified() {
		ref = domain.PhotoReference(domain.RestaurantPhotoPath(ref, width))
	}
	return RestaurantCard{
		Restaurant: r,
		PhotoURL:   s.photoURL(ref, width),
		MapsURL:    domain.MapsURL(r.Name, r.PlaceID),
	}
}

// photoURL points at the edge photo route, or is empty for a missing reference.
func (s *Service) photoURL(ref domain.PhotoReference, width int) string {
	if ref == "" {
		return ""
	}
	q := url.Values{}
	q.Set("photoReference", string(ref))
	q.Set("maxwidth", strconv.Itoa(width))
	return s.PhotoPath + "?" + q.Encode()
}

func mapRemoteError(err error, notFoundCode string) error {
	switch restaurantapi.StatusOf(err) {
	case 401:
		return errUnauthenticated
	case 400:
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: restaurantapi.MessageOf(err)}
	case 404:
		if notFoundCode != "" {
			return &Error{Status: 404, Code: notFoundCode, Message: restaurantapi.MessageOf(err)}
		}
	}
	return err
}

func joinCategories() string {
	cs := domain.Categories()
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
