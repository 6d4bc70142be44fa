package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/api"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/cart"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleRemoteError converts a collaborator failure to an HTTP response,
// keeping the backend-supplied message.
func handleRemoteError(w http.ResponseWriter, err error) {
	var re *api.RemoteError
	if !errors.As(err, &re) {
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	var httpStatus int
	switch re.Kind {
	case api.KindInvalidPayload:
		httpStatus = http.StatusBadRequest
	case api.KindStaleToken:
		httpStatus = http.StatusUnauthorized
	case api.KindForbidden:
		httpStatus = http.StatusForbidden
	case api.KindNotFound:
		httpStatus = http.StatusNotFound
	case api.KindConflict:
		httpStatus = http.StatusConflict
	case api.KindUnreachable:
		httpStatus = http.StatusServiceUnavailable
	default:
		httpStatus = http.StatusBadGateway
	}

	respondError(w, httpStatus, re.Kind.String(), re.Message)
}

// handleCartError converts a local cart validation failure. These never
// reach the network; they block the action with an inline message.
func handleCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusConflict, "out_of_stock", "This product is out of stock")
	case errors.Is(err, cart.ErrStockExceeded):
		respondError(w, http.StatusConflict, "stock_exceeded", "Cannot add more - insufficient stock")
	case errors.Is(err, cart.ErrUnknownProduct):
		respondError(w, http.StatusNotFound, "unknown_product", "Product is not in the catalog")
	case errors.Is(err, cart.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "Please add at least one item to the order")
	case errors.Is(err, cart.ErrSubmitInFlight):
		respondError(w, http.StatusConflict, "submit_in_flight", "An order submission is already in progress")
	case errors.Is(err, cart.ErrSessionEnded):
		respondError(w, http.StatusGone, "cart_closed", "This cart session has ended")
	default:
		handleRemoteError(w, err)
	}
}
