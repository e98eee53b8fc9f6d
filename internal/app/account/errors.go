package account

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

// ErrUnauthenticated is returned when no live session backs the request.
var ErrUnauthenticated = &Error{
	Status:  401,
	Code:    "UNAUTHENTICATED",
	Message: "Sign in to continue.",
}
