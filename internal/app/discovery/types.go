package discovery

import "github.com/foodswipe/foodswipe-edge/internal/domain"

// Display widths requested for restaurant photos.
const (
	CardPhotoWidth    = 600
	ModalPhotoWidth   = 400
	GalleryPhotoWidth = 300
	HeroPhotoWidth    = 800
)

type NearbyQuery struct {
	// Text is a free-form location resolved through place text search.
	Text string
	// Latitude and Longitude are used when Text is empty or cannot be resolved.
	Latitude  *float64
	Longitude *float64
	Category  string
}

// RestaurantCard is a restaurant as shown in result lists.
type RestaurantCard struct {
	domain.Restaurant
	// PhotoURL is an edge-relative URL, empty when the restaurant has no photo.
	PhotoURL string
	MapsURL  string
}

type NearbyResult struct {
	Location    domain.Location
	Category    domain.Category
	Restaurants []RestaurantCard
}

type RestaurantView struct {
	domain.RestaurantDetail
	MapsURL     string
	HeroURL     string
	GalleryURLs []string
}

type PlaceView struct {
	domain.Place
	PhotoURLs []string
}

type PlaceDetailView struct {
	domain.PlaceDetail
	MapsURL   string
	PhotoURLs []string
}
