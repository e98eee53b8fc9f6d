package photofetch

import (
	"context"
	"errors"
)

// ErrNotImage indicates the endpoint answered successfully but not with image bytes.
var ErrNotImage = errors.New("response is not an image")

// Photo is a fetched image.
type Photo struct {
	URL         string
	ContentType string
	Data        []byte
}

// Fetcher retrieves image bytes for a photo URL. The URL is either API-relative
// ("/api/...") or absolute. Any error is treated as a failed load attempt.
type Fetcher interface {
	FetchPhoto(ctx context.Context, photoURL string) (Photo, error)
}
