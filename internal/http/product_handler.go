package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/api"
)

// ProductHandler is the catalog surface. Reads are open to any signed-in
// user; mutations are routed behind the ADMIN guard and re-checked by the
// product service anyway.
type ProductHandler struct {
	timeout  time.Duration
	validate *validator.Validate
}

func NewProductHandler(timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		timeout:  timeout,
		validate: validator.New(),
	}
}

func (h *ProductHandler) products(r *http.Request) *api.ProductClient {
	if client := sessionFromContext(r.Context()).API(); client != nil {
		return client.Products()
	}
	return nil
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	client := h.products(r)
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	products, err := client.List(ctx)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	client := h.products(r)
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	product, err := client.Get(ctx, id)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	client := h.products(r)
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	product, err := client.Create(ctx, fields)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	client := h.products(r)
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	fields, ok := h.decodeFields(w, r)
	if !ok {
		return
	}

	product, err := client.Update(ctx, id, fields)
	if err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Delete relays the product service's verdict: 409 means the product is
// referenced by existing orders.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	client := h.products(r)
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	if err := client.Delete(ctx, id); err != nil {
		handleRemoteError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *ProductHandler) decodeFields(w http.ResponseWriter, r *http.Request) (api.ProductFields, bool) {
	var fields api.ProductFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return fields, false
	}
	if err := h.validate.Struct(fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
		return fields, false
	}
	return fields, true
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
