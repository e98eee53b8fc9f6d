package account

import (
	"context"

	"github.com/foodswipe/foodswipe-edge/internal/platform/logging"
	"github.com/foodswipe/foodswipe-edge/internal/ports/out/sessionstore"
)

// Credentials supplies the session token from the request context to the remote API
// client, and drops the session when the remote API rejects its token.
type Credentials struct {
	store sessionstore.Store
}

func NewCredentials(store sessionstore.Store) *Credentials {
	return &Credentials{store: store}
}

func (c *Credentials) Token(ctx context.Context) (string, bool) {
	s, ok := SessionFromContext(ctx)
	if !ok || s.Token == "" {
		return "", false
	}
	return s.Token, true
}

func (c *Credentials) Unauthorized(ctx context.Context) {
	s, ok := SessionFromContext(ctx)
	if !ok {
		return
	}
	// The request may already be canceled; the delete must still happen.
	if err := c.store.Delete(context.WithoutCancel(ctx), s.ID); err != nil {
		logging.FromContext(ctx).Warn("session delete after 401 failed", "err", err)
		return
	}
	logging.FromContext(ctx).Info("session cleared after remote 401", "user_id", int64(s.User.ID))
}
