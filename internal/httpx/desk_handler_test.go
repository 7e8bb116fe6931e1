package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andikasp/orderdesk/internal/catalog"
	"github.com/andikasp/orderdesk/internal/dairyapi"
	"github.com/andikasp/orderdesk/internal/order"
	"github.com/andikasp/orderdesk/internal/session"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fake upstream dairy API: satu produk (type 7) dengan stok 10 dari dua
// batch, satu order lama (id 5) dengan line item dobel dan satu baris
// yang minta lebih dari stok.
func newFakeUpstream(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /product-stocks", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"productStocks": [
				{"id":1,"productType":7,"quantity":6,"status":"available","productTypeDetail":{"id":7,"productName":"Fresh Milk","unit":"liter"}},
				{"id":2,"productType":7,"quantity":4,"status":"available","productTypeDetail":{"id":7,"productName":"Fresh Milk","unit":"liter"}},
				{"id":3,"productType":7,"quantity":99,"status":"expired","productTypeDetail":{"id":7,"productName":"Fresh Milk","unit":"liter"}}
			]
		}`))
	})
	mux.HandleFunc("GET /orders/5", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"success": true,
			"order": {
				"id": 5,
				"customerName": "Pak Budi",
				"location": "Pasar Baru",
				"status": "Requested",
				"orderItems": [
					{"productTypeDetail":{"id":7,"productName":"Fresh Milk"},"quantity":2},
					{"productTypeDetail":{"id":7,"productName":"Fresh Milk"},"quantity":3},
					{"productTypeDetail":{"id":9,"productName":"Cheese"},"quantity":1}
				]
			}
		}`))
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var p dairyapi.OrderPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		_, _ = w.Write([]byte(`{"success": true, "data": {"id": 99}}`))
	})
	mux.HandleFunc("PUT /orders/5", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": {"id": 5}}`))
	})
	return httptest.NewServer(mux)
}

func newTestRouter(t *testing.T) http.Handler {
	upstream := newFakeUpstream(t)
	t.Cleanup(upstream.Close)

	logger := zap.NewNop()
	client := dairyapi.NewClient(upstream.URL, logger)
	cat := &catalog.Service{Fetcher: client, Logger: logger}

	h := &DeskHandler{
		Catalog:  cat,
		Sessions: session.NewStore(time.Minute),
		Upstream: client,
		Submitter: &order.Submitter{
			Upstream: client,
			Catalog:  cat,
			Service:  "orderdesk-test",
			Logger:   logger,
		},
		Logger: logger,
	}
	r := NewRouter()
	h.Register(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestDraftLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPost, "/drafts", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	draftID, _ := resp["draftId"].(string)
	require.NotEmpty(t, draftID)

	// isi data customer
	rec, _ = doJSON(t, r, http.MethodPut, "/drafts/"+draftID, map[string]any{
		"customerName": "Bu Sari",
		"location":     "Jl. Melati 3",
		"phoneNumber":  "81234567890",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// tambah item dalam batas stok
	rec, _ = doJSON(t, r, http.MethodPost, "/drafts/"+draftID+"/items", map[string]any{
		"productType": 7, "quantity": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// melebihi stok gabungan (4+8 > 10): 409 plus sisa stok
	rec, resp = doJSON(t, r, http.MethodPost, "/drafts/"+draftID+"/items", map[string]any{
		"productType": 7, "quantity": 8,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, float64(10), resp["available"])

	// submit sukses
	rec, resp = doJSON(t, r, http.MethodPost, "/drafts/"+draftID+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(99), resp["orderId"])

	// sesi dibuang sesudah sukses
	rec, _ = doJSON(t, r, http.MethodGet, "/drafts/"+draftID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitEmptyBasketRejected(t *testing.T) {
	r := newTestRouter(t)

	_, resp := doJSON(t, r, http.MethodPost, "/drafts", nil)
	draftID := resp["draftId"].(string)

	rec, _ := doJSON(t, r, http.MethodPost, "/drafts/"+draftID+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHydrateFromOrderSurfacesTrimWarning(t *testing.T) {
	r := newTestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPost, "/drafts?from=5", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, resp["warning"], "insufficient stock")

	draft := resp["draft"].(map[string]any)
	items := draft["basket"].(map[string]any)["items"].([]any)
	// baris Cheese (type 9) dibuang, dua baris Fresh Milk jadi satu
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	require.Equal(t, float64(7), line["productType"])
	require.Equal(t, float64(5), line["quantity"])
}

func TestAddItemUnknownProduct(t *testing.T) {
	r := newTestRouter(t)

	_, resp := doJSON(t, r, http.MethodPost, "/drafts", nil)
	draftID := resp["draftId"].(string)

	rec, _ := doJSON(t, r, http.MethodPost, "/drafts/"+draftID+"/items", map[string]any{
		"productType": 42, "quantity": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIncrementDecrementRemove(t *testing.T) {
	r := newTestRouter(t)

	_, resp := doJSON(t, r, http.MethodPost, "/drafts", nil)
	draftID := resp["draftId"].(string)

	doJSON(t, r, http.MethodPost, "/drafts/"+draftID+"/items", map[string]any{
		"productType": 7, "quantity": 1,
	})

	rec, resp := doJSON(t, r, http.MethodPost, fmt.Sprintf("/drafts/%s/items/0/increment", draftID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := resp["draft"].(map[string]any)["basket"].(map[string]any)["items"].([]any)
	require.Equal(t, float64(2), items[0].(map[string]any)["quantity"])

	// dua kali decrement: 2 -> 1 -> baris hilang
	doJSON(t, r, http.MethodPost, fmt.Sprintf("/drafts/%s/items/0/decrement", draftID), nil)
	rec, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/drafts/%s/items/0/decrement", draftID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items, _ = resp["draft"].(map[string]any)["basket"].(map[string]any)["items"].([]any)
	require.Empty(t, items)

	rec, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/drafts/%s/items/0", draftID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
