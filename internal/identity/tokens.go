package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/auth"
)

// TokenSet holds one session's tokens and implements the API transport's
// token source. Refresh is serialized so that a burst of 401s from
// parallel requests produces a single grant call.
type TokenSet struct {
	mu            sync.Mutex
	client        *Client
	accessToken   string
	refreshToken  string
	accessExpiry  time.Time
	refreshExpiry time.Time
}

func newTokenSet(client *Client, tr *tokenResponse) *TokenSet {
	t := &TokenSet{client: client}
	t.apply(tr)
	return t
}

func (t *TokenSet) apply(tr *tokenResponse) {
	now := time.Now()
	t.accessToken = tr.AccessToken
	t.refreshToken = tr.RefreshToken
	t.accessExpiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	if tr.RefreshExpiresIn > 0 {
		t.refreshExpiry = now.Add(time.Duration(tr.RefreshExpiresIn) * time.Second)
	}
}

func (t *TokenSet) AccessToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accessToken
}

// Refresh re-issues the access token when it expires within minValidity.
// It returns false without a grant call when the current token is still
// valid beyond the window. A rejected grant means the session is over.
func (t *TokenSet) Refresh(ctx context.Context, minValidity time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Until(t.accessExpiry) > minValidity {
		return false, nil
	}
	if t.refreshToken == "" || (!t.refreshExpiry.IsZero() && time.Now().After(t.refreshExpiry)) {
		return false, ErrReauthRequired
	}

	tr, err := t.client.refreshGrant(ctx, t.refreshToken)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrReauthRequired, err)
	}
	t.apply(tr)
	return true, nil
}

// Snapshot builds the guard's view from the current access token claims.
func (t *TokenSet) Snapshot() (auth.Snapshot, error) {
	t.mu.Lock()
	token := t.accessToken
	t.mu.Unlock()
	return auth.SnapshotFromToken(token, t.client.ClientID())
}
