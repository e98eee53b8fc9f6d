package discovery

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

var (
	// ErrNoFavorites is returned by RandomFavorite when the user has none.
	ErrNoFavorites = &Error{Status: 404, Code: "NO_FAVORITES", Message: "You have no favorite restaurants yet."}

	errUnauthenticated = &Error{Status: 401, Code: "UNAUTHENTICATED", Message: "Sign in to continue."}
)
