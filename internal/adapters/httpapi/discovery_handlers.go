package httpapi

import (
	"net/http"

	"github.com/oapi-codegen/nullable"

	"github.com/foodswipe/foodswipe-edge/internal/app/discovery"
	"github.com/foodswipe/foodswipe-edge/internal/domain"
)

type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Label     string  `json:"label,omitempty"`
}

type Restaurant struct {
	// ID is null for places the restaurant service has not stored.
	ID               nullable.Nullable[int64] `json:"id"`
	PlaceID          string                   `json:"placeId"`
	Name             string                   `json:"name"`
	Address          string                   `json:"address"`
	Rating           float64                  `json:"rating"`
	UserRatingsTotal int                      `json:"userRatingsTotal"`
	IsFavorite       bool                     `json:"isFavorite"`
	PhotoURL         string                   `json:"photoUrl,omitempty"`
	MapsURL          string                   `json:"mapsUrl"`
}

type NearbyResponse struct {
	Location    Location     `json:"location"`
	Category    string       `json:"category"`
	Restaurants []Restaurant `json:"restaurants"`
}

type FavoritesResponse struct {
	Restaurants []Restaurant `json:"restaurants"`
}

type FavoriteState struct {
	RestaurantID int64 `json:"restaurantId"`
	IsFavorite   bool  `json:"isFavorite"`
}

type ToggleFavoriteRequest struct {
	IsFavorite bool `json:"isFavorite"`
}

type Review struct {
	AuthorName   string  `json:"authorName"`
	Rating       float64 `json:"rating"`
	RelativeTime string  `json:"relativeTime"`
	Text         string  `json:"text"`
}

type RestaurantDetail struct {
	Restaurant
	Latitude     *float64 `json:"lat,omitempty"`
	Longitude    *float64 `json:"lng,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	OpeningHours []string `json:"openingHours,omitempty"`
	Reviews      []Review `json:"reviews,omitempty"`
	HeroURL      string   `json:"heroUrl,omitempty"`
	GalleryURLs  []string `json:"galleryUrls,omitempty"`
}

type PlaceSearchRequest struct {
	TextQuery string `json:"textQuery"`
}

type Place struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"displayName"`
	FormattedAddress string    `json:"formattedAddress"`
	Location         *Location `json:"location,omitempty"`
	PhotoURLs        []string  `json:"photoUrls"`
}

type PlaceDetail struct {
	PlaceID          string   `json:"placeId"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formattedAddress"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal *int     `json:"userRatingsTotal,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	Website          string   `json:"website,omitempty"`
	MapsURL          string   `json:"mapsUrl"`
	PhotoURLs        []string `json:"photoUrls"`
}

func (s *Server) ListNearbyRestaurants(w http.ResponseWriter, r *http.Request) {
	var (
		text, category *string
		lat, lng       *float64
	)
	if !bindQuery(w, r, "q", &text) ||
		!bindQuery(w, r, "lat", &lat) ||
		!bindQuery(w, r, "lng", &lng) ||
		!bindQuery(w, r, "category", &category) {
		return
	}
	q := discovery.NearbyQuery{Latitude: lat, Longitude: lng}
	if text != nil {
		q.Text = *text
	}
	if category != nil {
		q.Category = *category
	}
	res, err := s.Discovery.Nearby(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NearbyResponse{
		Location:    locationFromDomain(res.Location),
		Category:    string(res.Category),
		Restaurants: restaurantsFromCards(res.Restaurants),
	})
}

func (s *Server) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !bindPathInt64(w, r, "id", &id) {
		return
	}
	v, err := s.Discovery.Restaurant(r.Context(), domain.RestaurantID(id))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurantDetailFromView(v))
}

func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	cards, err := s.Discovery.Favorites(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Restaurants: restaurantsFromCards(cards)})
}

func (s *Server) GetRandomFavorite(w http.ResponseWriter, r *http.Request) {
	c, err := s.Discovery.RandomFavorite(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurantFromCard(c))
}

func (s *Server) PutFavorite(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !bindPathInt64(w, r, "id", &id) {
		return
	}
	if err := s.Discovery.AddFavorite(r.Context(), domain.RestaurantID(id)); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteState{RestaurantID: id, IsFavorite: true})
}

func (s *Server) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !bindPathInt64(w, r, "id", &id) {
		return
	}
	if err := s.Discovery.RemoveFavorite(r.Context(), domain.RestaurantID(id)); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteState{RestaurantID: id, IsFavorite: false})
}

// ToggleFavorite flips the state the client last saw, as the favorite button does.
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var id int64
	if !bindPathInt64(w, r, "id", &id) {
		return
	}
	var req ToggleFavoriteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	on, err := s.Discovery.ToggleFavorite(r.Context(), domain.RestaurantID(id), req.IsFavorite)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FavoriteState{RestaurantID: id, IsFavorite: on})
}

func (s *Server) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	var req PlaceSearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := s.Discovery.SearchPlaces(r.Context(), req.TextQuery)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := Place{
		ID:               string(v.ID),
		DisplayName:      v.DisplayName,
		FormattedAddress: v.FormattedAddress,
		PhotoURLs:        nonNil(v.PhotoURLs),
	}
	if v.Location != nil {
		l := locationFromDomain(*v.Location)
		out.Location = &l
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetPlaceDetails(w http.ResponseWriter, r *http.Request) {
	var placeID *string
	if !bindQueryEither(w, r, &placeID, "placeId", "placeid") {
		return
	}
	id := ""
	if placeID != nil {
		id = *placeID
	}
	v, err := s.Discovery.PlaceDetail(r.Context(), domain.PlaceID(id))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PlaceDetail{
		PlaceID:          string(v.PlaceID),
		Name:             v.Name,
		FormattedAddress: v.FormattedAddress,
		Rating:           v.Rating,
		UserRatingsTotal: v.UserRatingsTotal,
		Phone:            v.FormattedPhoneNumber,
		Website:          v.Website,
		MapsURL:          v.MapsURL,
		PhotoURLs:        nonNil(v.PhotoURLs),
	})
}

func locationFromDomain(l domain.Location) Location {
	return Location{Latitude: l.Latitude, Longitude: l.Longitude, Label: l.Label}
}

func restaurantFromCard(c discovery.RestaurantCard) Restaurant {
	out := Restaurant{
		ID:               nullable.NewNullNullable[int64](),
		PlaceID:          string(c.PlaceID),
		Name:             c.Name,
		Address:          c.Address,
		Rating:           c.Rating,
		UserRatingsTotal: c.UserRatingsTotal,
		IsFavorite:       c.IsFavorite,
		PhotoURL:         c.PhotoURL,
		MapsURL:          c.MapsURL,
	}
	if c.ID != nil {
		out.ID = nullable.NewNullableWithValue(int64(*c.ID))
	}
	return out
}

func restaurantsFromCards(cs []discovery.RestaurantCard) []Restaurant {
	out := make([]Restaurant, 0, len(cs))
	for _, c := range cs {
		out = append(out, restaurantFromCard(c))
	}
	return out
}

func restaurantDetailFromView(v discovery.RestaurantView) RestaurantDetail {
	out := RestaurantDetail{
		Restaurant:  restaurantFromCard(discovery.RestaurantCard{Restaurant: v.Restaurant, MapsURL: v.MapsURL}),
		Latitude:    v.Latitude,
		Longitude:   v.Longitude,
		HeroURL:     v.HeroURL,
		GalleryURLs: v.GalleryURLs,
	}
	out.PhotoURL = v.HeroURL
	if d := v.Details; d != nil {
		out.Phone = d.FormattedPhoneNumber
		out.Website = d.Website
		out.OpeningHours = d.OpeningHours
		for _, rv := range d.Reviews {
			out.Reviews = append(out.Reviews, Review{
				AuthorName:   rv.AuthorName,
				Rating:       rv.Rating,
				RelativeTime: rv.RelativeTimeDescription,
				Text:         rv.Text,
			})
		}
		if out.Address == "" {
			out.Address = d.FormattedAddress
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
