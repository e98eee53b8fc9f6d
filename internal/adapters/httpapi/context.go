package httpapi

import "context"

type sessionCookieKey struct{}

// withSessionCookie records that the request presented a session cookie, valid or not.
func withSessionCookie(ctx context.Context, present bool) context.Context {
	return context.WithValue(ctx, sessionCookieKey{}, present)
}

func sessionCookiePresent(ctx context.Context) bool {
	v, _ := ctx.Value(sessionCookieKey{}).(bool)
	return v
}
