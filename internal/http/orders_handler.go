package http

import (
	"context"
	"net/http"
	"time"
)

// OrdersHandler lists orders: the admin view is realm-wide, everyone else
// sees their own. The order service enforces the same split server-side.
type OrdersHandler struct {
	timeout time.Duration
}

func NewOrdersHandler(timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{timeout: timeout}
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	client := sess.API()
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	orders := client.Orders()
	if sess.Snapshot().IsAdmin() {
		all, err := orders.ListAll(ctx)
		if err != nil {
			handleRemoteError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, all)
		return
	}

	mine, err := orders.ListMine(ctx)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, mine)
}
