package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/auth"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/session"
)

const sessionCookie = "storefront_session"

type ctxKey int

const sessionKey ctxKey = iota

// SessionMiddleware resolves the browser's session from the cookie,
// creating a fresh anonymous one when needed.
func SessionMiddleware(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if cookie, err := r.Cookie(sessionCookie); err == nil {
				sess, _ = store.Get(cookie.Value)
			}
			if sess == nil {
				sess = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

// RequireRoles is the access guard as middleware. It re-evaluates the
// session snapshot on every request; the denial log and the alert flag in
// the response fire only on the transition into a denied state, repeats
// stay quiet. Empty roles means any authenticated user.
func RequireRoles(page string, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFromContext(r.Context())
			if sess == nil {
				respondError(w, http.StatusUnauthorized, "no_session", "no session")
				return
			}

			decision, fired := sess.Guard(page).Observe(sess.Snapshot(), roles)
			switch decision {
			case auth.DecisionPending:
				w.Header().Set("Retry-After", "1")
				respondError(w, http.StatusServiceUnavailable, "auth_pending", "Loading...")
			case auth.DecisionDeniedUnauthenticated:
				if fired {
					zap.L().Info("unauthenticated access", zap.String("page", page))
				}
				respondJSON(w, http.StatusUnauthorized, map[string]string{
					"error":    "authentication required",
					"code":     "unauthenticated",
					"redirect": "/",
				})
			case auth.DecisionDeniedForbidden:
				if fired {
					zap.L().Info("forbidden access", zap.String("page", page))
				}
				respondJSON(w, http.StatusForbidden, map[string]interface{}{
					"error":    "Access forbidden: Insufficient permissions",
					"code":     "forbidden",
					"redirect": "/",
					"alert":    fired,
				})
			case auth.DecisionAllowed:
				next.ServeHTTP(w, r)
			}
		})
	}
}
