package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/api"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/auth"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/identity"
)

// AuthHandler owns the identity-provider round-trip: hosted login
// redirect, code exchange on callback, session introspection, logout.
type AuthHandler struct {
	idp         *identity.Client
	productBase string
	orderBase   string
	publicURL   string
	timeout     time.Duration
}

func NewAuthHandler(idp *identity.Client, productBase, orderBase, publicURL string, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		idp:         idp,
		productBase: productBase,
		orderBase:   orderBase,
		publicURL:   publicURL,
		timeout:     timeout,
	}
}

// Login sends the browser to the provider's hosted login page. The session
// reports loading until the callback lands.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	state := uuid.New().String()
	sess.BeginLogin(state)
	http.Redirect(w, r, h.idp.LoginURL(state), http.StatusFound)
}

// Callback exchanges the authorization code for tokens and binds a fresh
// API client to them.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	expected := sess.TakeLoginState()
	if expected == "" || r.URL.Query().Get("state") != expected {
		respondError(w, http.StatusBadRequest, "invalid_state", "login state mismatch")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing_code", "authorization code missing")
		return
	}

	tokens, err := h.idp.Exchange(r.Context(), code)
	if err != nil {
		zap.L().Error("code exchange failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "exchange_failed", "Failed to complete sign-in")
		return
	}

	client := api.NewClient(h.productBase, h.orderBase, tokens, h.timeout)
	sess.CompleteLogin(tokens, client)

	http.Redirect(w, r, "/", http.StatusFound)
}

type meResponse struct {
	Loading       bool        `json:"loading"`
	Authenticated bool        `json:"authenticated"`
	Username      string      `json:"username,omitempty"`
	Roles         []auth.Role `json:"roles"`
	IsAdmin       bool        `json:"isAdmin"`
	IsClient      bool        `json:"isClient"`
}

// Me reports the current auth snapshot so the pages can decide what to
// render. Advisory only, the backends re-check every call.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	snap := sessionFromContext(r.Context()).Snapshot()
	roles := snap.Roles
	if roles == nil {
		roles = []auth.Role{}
	}
	respondJSON(w, http.StatusOK, meResponse{
		Loading:       snap.Loading,
		Authenticated: snap.Authenticated,
		Username:      snap.Username,
		Roles:         roles,
		IsAdmin:       snap.IsAdmin(),
		IsClient:      snap.IsClient(),
	})
}

// Logout drops the server-side session state and sends the browser to the
// provider's logout endpoint.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionFromContext(r.Context()).Logout()
	http.Redirect(w, r, h.idp.LogoutURL(h.publicURL), http.StatusFound)
}
