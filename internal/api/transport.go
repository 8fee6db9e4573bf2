package api

import (
	"net/http"

	"github.com/google/uuid"
)

// TokenSource is the session the client reads its bearer token from. Invalidate is called
// on any 401 and must drop the stored token and send the operator back to the login screen.
type TokenSource interface {
	Token() string
	Invalidate()
}

// authTransport injects the bearer token and tears the session down on 401.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if token := t.tokens.Token(); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.tokens.Invalidate()
	}
	return resp, nil
}
