package sessionstore

import (
	"context"
	"errors"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
)

// ErrNotFound indicates the session does not exist (or has been evicted).
var ErrNotFound = errors.New("session not found")

// Store persists edge sessions. Put overwrites an existing session with the same ID.
type Store interface {
	Get(ctx context.Context, id domain.SessionID) (domain.Session, error)
	Put(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, id domain.SessionID) error
}
