package remoteapi

import (
	"context"
	"net/http"
)

// Credentials supplies the bearer token for an outgoing request and is told when the
// remote API rejects it.
type Credentials interface {
	// Token returns the bearer token for the request context, if any.
	Token(ctx context.Context) (string, bool)
	// Unauthorized is called when a request that carried a token received 401.
	Unauthorized(ctx context.Context)
}

// authTransport attaches the bearer token to requests for the API host and reports
// 401 responses back to the credentials.
type authTransport struct {
	base  http.RoundTripper
	host  string
	creds Credentials
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attached := false
	if t.creds != nil && req.URL.Host == t.host && req.Header.Get("Authorization") == "" {
		if tok, ok := t.creds.Token(req.Context()); ok && tok != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+tok)
			attached = true
		}
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if attached && resp.StatusCode == http.StatusUnauthorized {
		t.creds.Unauthorized(req.Context())
	}
	return resp, nil
}
