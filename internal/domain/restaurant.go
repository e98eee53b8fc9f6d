package domain

import (
	"net/url"
	"strconv"
)

// Category filters nearby restaurant results. Values are part of the remote API contract.
type Category string

const (
	CategoryAll     Category = "全部"
	CategorySnack   Category = "小吃"
	CategoryDining  Category = "餐廳"
	CategoryDessert Category = "甜點"
	CategoryCafe    Category = "咖啡"
)

// Categories lists the accepted categories in display order.
func Categories() []Category {
	return []Category{CategoryAll, CategorySnack, CategoryDining, CategoryDessert, CategoryCafe}
}

func ParseCategory(s string) (Category, bool) {
	if s == "" {
		return CategoryAll, true
	}
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// DefaultLocation is used when neither a search nor coordinates resolve a location.
var DefaultLocation = Location{Latitude: 25.0418, Longitude: 121.5352, Label: "台北市"}

type Location struct {
	Latitude  float64
	Longitude float64
	Label     string
}

type Restaurant struct {
	// ID is nil when the remote API returned the place without persisting it.
	ID               *RestaurantID
	PlaceID          PlaceID
	Name             string
	Address          string
	Rating           float64
	UserRatingsTotal int
	PhotoReference   PhotoReference
	IsFavorite       bool
}

type Review struct {
	AuthorName              string
	Rating                  float64
	RelativeTimeDescription string
	Text                    string
}

// RestaurantDetails is the optional provider detail block of a restaurant.
type RestaurantDetails struct {
	FormattedAddress     string
	FormattedPhoneNumber string
	Website              string
	URL                  string
	OpeningHours         []string
	Reviews              []Review
	Photos               []PhotoReference
}

type RestaurantDetail struct {
	Restaurant
	Latitude  *float64
	Longitude *float64
	Details   *RestaurantDetails
}

type PlacePhoto struct {
	Reference PhotoReference
	Width     int
	Height    int
}

// Place is a text-search result.
type Place struct {
	ID               PlaceID
	DisplayName      string
	FormattedAddress string
	Location         *Location
	Photos           []PlacePhoto
}

type PlaceDetail struct {
	PlaceID              PlaceID
	Name                 string
	FormattedAddress     string
	Rating               *float64
	UserRatingsTotal     *int
	FormattedPhoneNumber string
	Website              string
	Photos               []PlacePhoto
}

// MapsURL builds the map-application deep link for a place.
func MapsURL(name string, placeID PlaceID) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", name)
	q.Set("query_place_id", string(placeID))
	return "https://www.google.com/maps/search/?" + q.Encode()
}

// RestaurantPhotoPath is the restaurant-keyed photo source on the remote API.
func RestaurantPhotoPath(ref PhotoReference, maxWidth int) string {
	return "/api/restaurants/photo/" + url.PathEscape(string(ref)) + "?maxwidth=" + strconv.Itoa(maxWidth)
}
