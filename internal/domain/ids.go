package domain

// UserID is the remote API's numeric user identifier.
type UserID int64

// RestaurantID is the remote API's restaurant identifier.
// Restaurants returned without a database row carry no ID (see Restaurant.ID).
type RestaurantID int64

// PlaceID is the opaque place identifier issued by the places provider.
type PlaceID string

// SessionID identifies an edge session. It is the value of the session cookie.
type SessionID string
