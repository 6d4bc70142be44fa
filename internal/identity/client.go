// Package identity talks to the Keycloak-style identity provider: login
// redirect, authorization-code exchange, refresh grant, and logout. Role
// claims live in the access token; parsing them is the auth package's job.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrReauthRequired is returned when the refresh grant is rejected and the
// user has to sign in again.
var ErrReauthRequired = errors.New("session expired, re-authentication required")

type Client struct {
	http        *http.Client
	baseURL     string
	realm       string
	clientID    string
	redirectURI string
}

func NewClient(baseURL, realm, clientID, redirectURI string, timeout time.Duration) *Client {
	return &Client{
		http:        &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		realm:       realm,
		clientID:    clientID,
		redirectURI: redirectURI,
	}
}

func (c *Client) ClientID() string { return c.clientID }

func (c *Client) realmURL(path string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/%s", c.baseURL, c.realm, path)
}

// LoginURL builds the authorization-code redirect for the hosted login page.
func (c *Client) LoginURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "openid")
	q.Set("state", state)
	return c.realmURL("auth") + "?" + q.Encode()
}

// LogoutURL ends the provider session and sends the browser back to the
// landing page.
func (c *Client) LogoutURL(postLogoutRedirect string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("post_logout_redirect_uri", postLogoutRedirect)
	return c.realmURL("logout") + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int    `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
}

// Exchange trades an authorization code for a token set. This resolves the
// session once at its start.
func (c *Client) Exchange(ctx context.Context, code string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.clientID)
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	tr, err := c.tokenRequest(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return newTokenSet(c, tr), nil
}

func (c *Client) refreshGrant(ctx context.Context, refreshToken string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("refresh_token", refreshToken)
	return c.tokenRequest(ctx, form)
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.realmURL("token"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	return &tr, nil
}
