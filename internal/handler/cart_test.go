package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-local-api/internal/handler"
	"tienda-local-api/internal/notify"
	"tienda-local-api/internal/repository"
	"tienda-local-api/internal/router"
	"tienda-local-api/internal/service"
	"tienda-local-api/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	queue := service.NewSyncQueue(repository.NewSQLiteSyncActionRepository(s), nil)
	cart := service.NewCartService(
		repository.NewSQLiteCartRepository(s),
		repository.NewSQLiteConfigRepository(s),
		queue,
		notify.NewMemoryNotifier(),
	)
	checkout := service.NewCheckoutService(cart, repository.NewSQLitePurchaseRepository(s), service.CheckoutConfig{
		WhatsAppNumber: "573113081706",
		StoreName:      "NKD Pereira",
	})

	mux := router.New(router.Config{
		CartHandler:     handler.NewCartHandler(cart),
		CheckoutHandler: handler.NewCheckoutHandler(checkout),
		SyncHandler:     handler.NewSyncHandler(queue, nil),
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if resp.StatusCode == http.StatusNoContent {
		return resp, nil
	}
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

const productA = `{"id":"A","titulo":"Pastillas de freno","precio":15000,"imagen":"",
	"categoria":{"id":"frenos","nombre":"Frenos"}}`

func TestCartEndpointsLifecycle(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1/carrito"

	resp, body := doJSON(t, http.MethodPost, base+"/items", productA)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), item["cantidad"])

	resp, body = doJSON(t, http.MethodPost, base+"/items/A/incrementar", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item = body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), item["cantidad"])

	resp, body = doJSON(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := body["data"].(map[string]interface{})
	assert.Equal(t, float64(30000), summary["total"])
	assert.Equal(t, float64(2), summary["cantidad"])

	resp, body = doJSON(t, http.MethodGet, base+"/contador", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["data"].(map[string]interface{})["total"])

	resp, body = doJSON(t, http.MethodPost, base+"/items/A/decrementar", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item = body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), item["cantidad"])

	// Decrementing the last unit removes the line.
	resp, _ = doJSON(t, http.MethodPost, base+"/items/A/decrementar", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base+"/items/A/decrementar", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddItemValidation(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1/carrito/items"

	resp, _ := doJSON(t, http.MethodPost, base, `{"titulo":"sin id","precio":-1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, base, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClearCartEndpoint(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1/carrito"

	resp, _ := doJSON(t, http.MethodPost, base+"/items", productA)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, base+"/contador", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["total"])
}

func TestCheckoutEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/checkout", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "empty cart cannot check out")

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/carrito/items", productA)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/checkout", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	handoff := body["data"].(map[string]interface{})
	assert.Contains(t, handoff["url"], "https://wa.me/573113081706?text=")
	assert.Contains(t, handoff["mensaje"], "*NKD Pereira* - Nueva Orden de Compra")

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/v1/compras", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["data"].(map[string]interface{})["total"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/v1/carrito/contador", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["total"])
}

func TestSyncEndpoints(t *testing.T) {
	server := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/carrito/items", productA)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/v1/sync/pendientes", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, false, data["online"])

	// Without an endpoint the replay is a no-op and nothing resolves.
	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/v1/sync/replay", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["data"].(map[string]interface{})["resolved"])
}
