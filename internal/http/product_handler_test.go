package http

import (
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
)

func productRoutes(h *ProductHandler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/api/products", h.List)
		r.Get("/api/products/{id}", h.Get)
		r.Post("/api/products", h.Create)
		r.Put("/api/products/{id}", h.Update)
		r.Delete("/api/products/{id}", h.Delete)
	}
}

func TestProducts_ListAndGet(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/products", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]domain.Product{{ID: 1, Name: "Keyboard", Price: 10, Quantity: 2}})
	})
	r.Get("/products/1", func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode(domain.Product{ID: 1, Name: "Keyboard", Price: 10, Quantity: 2})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleClient)
	router := withSession(sess, productRoutes(NewProductHandler(5*time.Second)))

	recorder := get(router, "/api/products")
	require.Equal(t, http.StatusOK, recorder.Code)
	var products []domain.Product
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&products))
	require.Len(t, products, 1)
	assert.Equal(t, "Keyboard", products[0].Name)

	recorder = get(router, "/api/products/1")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = get(router, "/api/products/abc")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestProducts_CreateValidatesFields(t *testing.T) {
	var created []api.ProductFields
	r := chi.NewRouter()
	r.Post("/products", func(w http.ResponseWriter, req *http.Request) {
		var fields api.ProductFields
		json.NewDecoder(req.Body).Decode(&fields)
		created = append(created, fields)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Product{ID: 7, Name: fields.Name})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleAdmin)
	router := withSession(sess, productRoutes(NewProductHandler(5*time.Second)))

	// Negative price never leaves the process.
	recorder := doJSON(t, router, http.MethodPost, "/api/products", api.ProductFields{
		Name: "Bad", Description: "d", Price: -1, Quantity: 1,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, created)

	// Missing name fails too.
	recorder = doJSON(t, router, http.MethodPost, "/api/products", api.ProductFields{
		Description: "d", Price: 1, Quantity: 1,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, created)

	recorder = doJSON(t, router, http.MethodPost, "/api/products", api.ProductFields{
		Name: "Keyboard", Description: "d", Price: 10, Quantity: 3,
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Len(t, created, 1)
	assert.Equal(t, "Keyboard", created[0].Name)
}

func TestProducts_DeleteConflictRelayed(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/products/3", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "Product is referenced by existing orders"})
	})
	server := httptest.NewServer(r)
	defer server.Close()

	sess := newSignedInSession(t, server.URL, auth.RoleAdmin)
	router := withSession(sess, productRoutes(NewProductHandler(5*time.Second)))

	recorder := doJSON(t, router, http.MethodDelete, "/api/products/3", nil)
	require.Equal(t, http.StatusConflict, recorder.Code)
	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&errResp))
	assert.Equal(t, "Product is referenced by existing orders", errResp.Error)
}
