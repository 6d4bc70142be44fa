package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/cart"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/domain"
)

// CartHandler drives the order-composition page. The composer lives in the
// session; every mutation here is one user event against it. Stock and
// total checks are previews against the catalog snapshot, the order
// service re-validates on submit.
type CartHandler struct {
	timeout time.Duration
}

func NewCartHandler(timeout time.Duration) *CartHandler {
	return &CartHandler{timeout: timeout}
}

type cartLineView struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type cartView struct {
	Catalog []domain.Product `json:"catalog"`
	Items   []cartLineView   `json:"items"`
	Total   float64          `json:"total"`
}

func buildCartView(composer *cart.Composer) cartView {
	// One locked snapshot, so the rendered total matches the rendered
	// items even under concurrent edits.
	snap := composer.Snapshot()

	byID := make(map[int64]domain.Product, len(snap.Catalog))
	for _, p := range snap.Catalog {
		byID[p.ID] = p
	}

	items := make([]cartLineView, 0, len(snap.Lines))
	for _, line := range snap.Lines {
		product := byID[line.ProductID]
		items = append(items, cartLineView{
			ProductID: line.ProductID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			LineTotal: product.Price * float64(line.Quantity),
		})
	}

	return cartView{
		Catalog: snap.Catalog,
		Items:   items,
		Total:   snap.Total,
	}
}

// Open starts a composition session: fetches a fresh catalog snapshot and
// seeds the composer with it. A failed fetch leaves the page stalled; the
// user reloads, there is no automatic retry.
func (h *CartHandler) Open(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	client := sess.API()
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	catalog, err := client.Products().List(ctx)
	if err != nil {
		handleRemoteError(w, err)
		return
	}

	composer := sess.OpenCart()
	composer.SetCatalog(catalog)

	respondJSON(w, http.StatusOK, buildCartView(composer))
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, buildCartView(sess.Cart()))
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
}

// AddItem adds one unit, mirroring the page's add button.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	composer := sess.Cart()
	if err := composer.AddItem(req.ProductID); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildCartView(composer))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets a line's quantity directly; zero or less removes the
// line.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	productID, err := cartProductID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	composer := sess.Cart()
	if err := composer.SetQuantity(productID, req.Quantity); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildCartView(composer))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	productID, err := cartProductID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	composer := sess.Cart()
	if err := composer.RemoveItem(productID); err != nil {
		handleCartError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, buildCartView(composer))
}

// Submit sends the composition to the order service. The composer blocks
// overlapping submissions; on failure the cart stays editable for retry,
// on success the session's cart ends and the page navigates to the orders
// list.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sess := sessionFromContext(r.Context())
	client := sess.API()
	if client == nil {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in first")
		return
	}

	order, err := sess.Cart().Submit(ctx, client.Orders())
	if err != nil {
		handleCartError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"order":    order,
		"redirect": "/orders",
	})
}

// Discard mirrors navigating away from the order page: the cart is gone,
// no confirmation, no persistence.
func (h *CartHandler) Discard(w http.ResponseWriter, r *http.Request) {
	sessionFromContext(r.Context()).DiscardCart()
	respondJSON(w, http.StatusOK, map[string]string{"status": "discarded"})
}

func cartProductID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
