package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/api"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/auth"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/domain"
	"github.com/yasser-eddouche/projet-ouath2-oidc/internal/session"
)

type stubTokens struct {
	snap auth.Snapshot
}

func (s stubTokens) Snapshot() (auth.Snapshot, error) {
	return s.snap, nil
}

// fakeBackend stands in for both the product and the order service.
type fakeBackend struct {
	catalog     []domain.Product
	orderStatus int
	orderBody   any
	orders      []domain.OrderSubmission
}

func (f *fakeBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/products", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(f.catalog)
	})
	r.Post("/orders", func(w http.ResponseWriter, req *http.Request) {
		var sub domain.OrderSubmission
		json.NewDecoder(req.Body).Decode(&sub)
		f.orders = append(f.orders, sub)
		if f.orderStatus != 0 {
			w.WriteHeader(f.orderStatus)
		}
		if f.orderBody != nil {
			json.NewEncoder(w).Encode(f.orderBody)
		}
	})
	return r
}

func newSignedInSession(t *testing.T, backendURL string, roles ...auth.Role) *session.Session {
	t.Helper()
	store := session.NewStore(time.Minute)
	t.Cleanup(store.Close)

	sess := store.Create()
	tokens := stubTokens{snap: auth.Snapshot{Authenticated: true, Username: "alice", Roles: roles}}
	client := api.NewClient(backendURL, backendURL, api.AnonymousTokenSource(), 5*time.Second)
	sess.CompleteLogin(tokens, client)
	return sess
}

func newAnonymousSession(t *testing.T) *session.Session {
	t.Helper()
	store := session.NewStore(time.Minute)
	t.Cleanup(store.Close)
	return store.Create()
}

// withSession mounts routes behind a middleware that injects the session.
func withSession(sess *session.Session, mount func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), sessionKey, sess)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	mount(r)
	return r
}

func cartRoutes(h *CartHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/api/cart/open", h.Open)
		r.Get("/api/cart", h.Get)
		r.Post("/api/cart/items", h.AddItem)
		r.Put("/api/cart/items/{product_id}", h.UpdateQuantity)
		r.Delete("/api/cart/items/{product_id}", h.RemoveItem)
		r.Post("/api/cart/submit", h.Submit)
		r.Delete("/api/cart", h.Discard)
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeCartView(t *testing.T, recorder *httptest.ResponseRecorder) cartView {
	t.Helper()
	var view cartView
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&view))
	return view
}

func TestCartFlow_OpenAddAndTotal(t *testing.T) {
	backend := &fakeBackend{catalog: []domain.Product{
		{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 2},
	}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleClient)
	router := withSession(sess, cartRoutes(NewCartHandler(5*time.Second)))

	recorder := doJSON(t, router, http.MethodPost, "/api/cart/open", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	view := decodeCartView(t, recorder)
	require.Len(t, view.Catalog, 1)
	assert.Empty(t, view.Items)

	recorder = doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder = doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})
	require.Equal(t, http.StatusOK, recorder.Code)

	view = decodeCartView(t, recorder)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, "Keyboard", view.Items[0].Name)
	assert.Equal(t, 20.00, view.Total)

	// Stock exhausted: inline warning, cart unchanged.
	recorder = doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})
	require.Equal(t, http.StatusConflict, recorder.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "stock_exceeded", errResp.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/cart", nil)
	view = decodeCartView(t, recorder)
	assert.Equal(t, 20.00, view.Total)
}

func TestCartFlow_UpdateAndRemove(t *testing.T) {
	backend := &fakeBackend{catalog: []domain.Product{
		{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 5},
		{ID: 2, Name: "Mouse", Price: 4.00, Quantity: 5},
	}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleClient)
	router := withSession(sess, cartRoutes(NewCartHandler(5*time.Second)))

	doJSON(t, router, http.MethodPost, "/api/cart/open", nil)
	doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})
	doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 2})

	recorder := doJSON(t, router, http.MethodPut, "/api/cart/items/1", updateQuantityRequest{Quantity: 3})
	require.Equal(t, http.StatusOK, recorder.Code)
	view := decodeCartView(t, recorder)
	assert.Equal(t, 34.00, view.Total)

	// Setting quantity to zero removes the line.
	recorder = doJSON(t, router, http.MethodPut, "/api/cart/items/1", updateQuantityRequest{Quantity: 0})
	view = decodeCartView(t, recorder)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].ProductID)
	assert.Equal(t, 4.00, view.Total)

	recorder = doJSON(t, router, http.MethodDelete, "/api/cart/items/2", nil)
	view = decodeCartView(t, recorder)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.00, view.Total)
}

func TestCartSubmit_Success(t *testing.T) {
	backend := &fakeBackend{
		catalog:   []domain.Product{{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 2}},
		orderBody: domain.Order{ID: 42, Status: "PENDING"},
	}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleClient)
	router := withSession(sess, cartRoutes(NewCartHandler(5*time.Second)))

	doJSON(t, router, http.MethodPost, "/api/cart/open", nil)
	doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})

	recorder := doJSON(t, router, http.MethodPost, "/api/cart/submit", nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp struct {
		Order    domain.Order `json:"order"`
		Redirect string       `json:"redirect"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, int64(42), resp.Order.ID)
	assert.Equal(t, "/orders", resp.Redirect)

	require.Len(t, backend.orders, 1)
	assert.Equal(t, []domain.SubmissionItem{{ProductID: 1, Quantity: 1}}, backend.orders[0].Items)

	// The composition session ended; the cart stays closed until the
	// next open, it does not silently restart.
	recorder = doJSON(t, router, http.MethodPost, "/api/cart/submit", nil)
	require.Equal(t, http.StatusGone, recorder.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "cart_closed", errResp.Code)
	assert.Len(t, backend.orders, 1, "a closed cart must not reach the order service")

	recorder = doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})
	require.Equal(t, http.StatusGone, recorder.Code)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "cart_closed", errResp.Code)

	// Reopening seeds a fresh, editable cart.
	recorder = doJSON(t, router, http.MethodPost, "/api/cart/open", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder = doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestCartSubmit_EmptyCartMakesNoNetworkCall(t *testing.T) {
	backend := &fakeBackend{catalog: []domain.Product{{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 2}}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleClient)
	router := withSession(sess, cartRoutes(NewCartHandler(5*time.Second)))

	doJSON(t, router, http.MethodPost, "/api/cart/open", nil)

	recorder := doJSON(t, router, http.MethodPost, "/api/cart/submit", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "empty_cart", errResp.Code)
	assert.Empty(t, backend.orders)
}

func TestCartSubmit_ForbiddenLeavesCartEditable(t *testing.T) {
	backend := &fakeBackend{
		catalog:     []domain.Product{{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 2}},
		orderStatus: http.StatusForbidden,
		orderBody:   map[string]string{"message": "Only CLIENT can create orders"},
	}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleClient)
	router := withSession(sess, cartRoutes(NewCartHandler(5*time.Second)))

	doJSON(t, router, http.MethodPost, "/api/cart/open", nil)
	doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})

	recorder := doJSON(t, router, http.MethodPost, "/api/cart/submit", nil)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "Only CLIENT can create orders", errResp.Error)

	// Cart untouched for retry or edits.
	recorder = doJSON(t, router, http.MethodGet, "/api/cart", nil)
	view := decodeCartView(t, recorder)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 10.00, view.Total)
}

func TestCartDiscard(t *testing.T) {
	backend := &fakeBackend{catalog: []domain.Product{{ID: 1, Name: "Keyboard", Price: 10.00, Quantity: 2}}}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleClient)
	router := withSession(sess, cartRoutes(NewCartHandler(5*time.Second)))

	doJSON(t, router, http.MethodPost, "/api/cart/open", nil)
	doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})

	recorder := doJSON(t, router, http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doJSON(t, router, http.MethodGet, "/api/cart", nil)
	view := decodeCartView(t, recorder)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.00, view.Total)

	// The discarded cart is closed, not restarted.
	recorder = doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: 1})
	require.Equal(t, http.StatusGone, recorder.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "cart_closed", errResp.Code)
}

func TestCartAddItem_InvalidBody(t *testing.T) {
	sess := newSignedInSession(t, "http://unused", auth.RoleClient)
	router := withSession(sess, cartRoutes(NewCartHandler(5*time.Second)))

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewReader([]byte("{")))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, router, http.MethodPost, "/api/cart/items", addItemRequest{ProductID: -4})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
