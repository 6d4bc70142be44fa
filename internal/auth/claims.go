package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims mirrors the Keycloak access token shape: realm-wide roles
// under realm_access and per-client roles under resource_access.
type tokenClaims struct {
	jwt.RegisteredClaims
	PreferredUsername string `json:"preferred_username"`
	RealmAccess       struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`
}

// SnapshotFromToken decodes an access token and builds an authenticated
// snapshot from its claims. The signature is deliberately not verified
// here: the resource servers verify every request themselves, the UI only
// reads claims to decide what to render. Role checks made from this
// snapshot are advisory, never authoritative.
func SnapshotFromToken(rawToken, clientID string) (Snapshot, error) {
	var claims tokenClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawToken, &claims); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode access token: %w", err)
	}

	merged := append([]string{}, claims.RealmAccess.Roles...)
	if client, ok := claims.ResourceAccess[clientID]; ok {
		merged = append(merged, client.Roles...)
	}

	return Snapshot{
		Authenticated: true,
		Subject:       claims.Subject,
		Username:      claims.PreferredUsername,
		Roles:         ParseRoles(merged),
	}, nil
}
