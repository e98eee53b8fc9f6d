package remoteapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/foodswipe/foodswipe-edge/internal/ports/out/restaurantapi"
)

// APIError is a non-2xx response from the remote API.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("remote api: %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *APIError) StatusCode() int { return e.Status }

func (e *APIError) RemoteMessage() string { return e.Message }

// StatusOf returns the remote status carried by err, or 0.
func StatusOf(err error) int { return restaurantapi.StatusOf(err) }

var _ restaurantapi.StatusError = (*APIError)(nil)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(resp *http.Response) *APIError {
	ae := &APIError{
		Method: resp.Request.Method,
		Path:   resp.Request.URL.Path,
		Status: resp.StatusCode,
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if err := json.Unmarshal(b, &eb); err == nil {
		ae.Message = eb.Error
		if ae.Message == "" {
			ae.Message = eb.Message
		}
	} else if s := strings.TrimSpace(string(b)); s != "" && len(s) < 200 {
		ae.Message = s
	}
	return ae
}
