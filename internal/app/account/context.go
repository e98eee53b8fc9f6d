package account

import (
	"context"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
)

type sessionKey struct{}

// WithSession stores the caller's session in ctx. Outgoing remote API calls made with
// the returned context carry the session's bearer token.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.Session)
	return s, ok
}
