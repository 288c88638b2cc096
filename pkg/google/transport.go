package google

import (
	"net/http"
)

// retryTransport injects the user's bearer token and performs the bounded
// 401 recovery: invalidate the cached token, refresh once, retry the request
// exactly once. A second 401 passes through to the caller as a hard failure.
type retryTransport struct {
	auth   *GoogleAuth
	userId int
	base   http.RoundTripper
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.auth.accessToken(req.Context(), t.userId)
	if err != nil {
		return nil, err
	}

	resp, err := t.send(req, token)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// 401: the cached token is stale. One silent retry after a forced
	// refresh; never more.
	resp.Body.Close()
	t.auth.tokens.invalidate(t.userId)
	token, err = t.auth.accessToken(req.Context(), t.userId)
	if err != nil {
		return nil, err
	}
	return t.send(req, token)
}

func (t *retryTransport) send(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(clone)
}
