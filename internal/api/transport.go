package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// refreshWindow is the minimum remaining validity asked of the provider
// before retrying a rejected request.
const refreshWindow = 5 * time.Second

// TokenSource is the slice of the identity session the transport needs:
// the current access token and a refresh attempt.
type TokenSource interface {
	AccessToken() string
	// Refresh re-issues the token when it expires within minValidity.
	// It returns false when the current token was still considered valid.
	Refresh(ctx context.Context, minValidity time.Duration) (bool, error)
}

// anonymousTokens is used before a session has signed in.
type anonymousTokens struct{}

func (anonymousTokens) AccessToken() string { return "" }
func (anonymousTokens) Refresh(context.Context, time.Duration) (bool, error) {
	return false, nil
}

// AnonymousTokenSource returns a TokenSource that never authenticates.
func AnonymousTokenSource() TokenSource { return anonymousTokens{} }

// authTransport injects the bearer token on every request and transparently
// re-issues a request exactly once after a single 401, provided the
// provider actually refreshed the token. A second 401 propagates to the
// caller as a hard failure rather than looping.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func newAuthTransport(tokens TokenSource) *authTransport {
	return &authTransport{
		base:   otelhttp.NewTransport(http.DefaultTransport),
		tokens: tokens,
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	if token := t.tokens.AccessToken(); token != "" {
		attempt.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refreshed, refreshErr := t.tokens.Refresh(req.Context(), refreshWindow)
	if refreshErr != nil || !refreshed {
		// Refresh failed or the token was supposedly still valid: hand the
		// 401 back so the caller can surface re-authentication.
		return resp, nil
	}

	retry, ok := rewind(req)
	if !ok {
		return resp, nil
	}
	drain(resp)

	retry.Header.Set("Authorization", "Bearer "+t.tokens.AccessToken())
	return t.base.RoundTrip(retry)
}

// rewind clones the request with a fresh body for the single retry.
func rewind(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
