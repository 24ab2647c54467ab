package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleetyard/rentledger/pkg/database"
	"github.com/fleetyard/rentledger/pkg/model"
	"github.com/fleetyard/rentledger/pkg/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T, totalQuantity int) (service.Reservation, service.Product, string) {
	t.Helper()

	products, reservations := database.NewMemory()

	p := model.Product{
		Base:          model.Base{ID: uuid.NewString(), CreatedAt: time.Now()},
		Name:          "Plate Compactor",
		Category:      "Concrete",
		TotalQuantity: totalQuantity,
	}
	require.NoError(t, products.Add(context.Background(), p))

	reservationSvc := &service.ReservationGeneric{ReservationRepository: reservations}
	productSvc := &service.ProductGeneric{ProductRepository: products}

	return reservationSvc, productSvc, p.ID
}

func reserveBody(productID, orderID string, startDay, endDay, qty int) string {
	return fmt.Sprintf(
		`{"product_id":%q,"order_id":%q,"start":"2025-03-%02dT00:00:00Z","end":"2025-03-%02dT00:00:00Z","quantity":%d}`,
		productID, orderID, startDay, endDay, qty,
	)
}

func post(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rec
}

func TestReserveHandler(t *testing.T) {
	svc, _, productID := newTestServices(t, 3)

	rec := post(t, Reserve(svc), "/reserve", reserveBody(productID, "O1", 1, 5, 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	var res model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, productID, res.ProductID)
	assert.Equal(t, model.ReservationActive, res.Status)

	// only 1 unit left for the overlapping period
	rec = post(t, Reserve(svc), "/reserve", reserveBody(productID, "O2", 2, 4, 2))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReserveHandlerBadRequests(t *testing.T) {
	svc, _, productID := newTestServices(t, 3)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", "{", http.StatusBadRequest},
		{"missing ids", `{"start":"2025-03-01T00:00:00Z","end":"2025-03-05T00:00:00Z","quantity":1}`, http.StatusBadRequest},
		{"inverted range", reserveBody(productID, "O1", 5, 1, 1), http.StatusBadRequest},
		{"zero quantity", reserveBody(productID, "O1", 1, 5, 0), http.StatusBadRequest},
		{"over total", reserveBody(productID, "O1", 1, 5, 9), http.StatusBadRequest},
		{"unknown product", reserveBody(uuid.NewString(), "O1", 1, 5, 1), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, Reserve(svc), "/reserve", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestReleaseAndCompleteHandlers(t *testing.T) {
	svc, _, productID := newTestServices(t, 1)

	rec := post(t, Reserve(svc), "/reserve", reserveBody(productID, "O1", 1, 5, 1))
	require.Equal(t, http.StatusCreated, rec.Code)

	var res model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	rec = post(t, Release(svc), "/release?id="+res.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var released model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &released))
	assert.Equal(t, model.ReservationCancelled, released.Status)

	// terminal reservations are conflicts, not silent no-ops
	rec = post(t, Release(svc), "/release?id="+res.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(t, Complete(svc), "/complete?id="+res.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(t, Complete(svc), "/complete?id="+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = post(t, Release(svc), "/release", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailabilityHandler(t *testing.T) {
	svc, _, productID := newTestServices(t, 3)

	rec := post(t, Reserve(svc), "/reserve", reserveBody(productID, "O1", 1, 5, 2))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := fmt.Sprintf(`{"product_id":%q,"start":"2025-03-02T00:00:00Z","end":"2025-03-04T00:00:00Z","quantity":2}`, productID)
	rec = post(t, CheckAvailability(svc), "/availability", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res model.AvailabilityResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Available)
	assert.Equal(t, 1, res.AvailableQuantity)

	rec = post(t, CheckAvailability(svc), "/availability", fmt.Sprintf(`{"product_id":%q,"start":"2025-03-06T00:00:00Z","end":"2025-03-08T00:00:00Z","quantity":3}`, productID))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Available)
}

func TestCheckAvailabilityBulkHandler(t *testing.T) {
	svc, _, productID := newTestServices(t, 3)

	body := fmt.Sprintf(`{"items":[
		{"product_id":%q,"start":"2025-03-01T00:00:00Z","end":"2025-03-05T00:00:00Z","quantity":1},
		{"product_id":"missing","start":"2025-03-01T00:00:00Z","end":"2025-03-05T00:00:00Z","quantity":1}
	]}`, productID)

	rec := post(t, CheckAvailabilityBulk(svc), "/availability/bulk", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []struct {
			Available bool   `json:"available"`
			Error     string `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)

	assert.True(t, resp.Results[0].Available)
	assert.Empty(t, resp.Results[0].Error)

	assert.False(t, resp.Results[1].Available)
	assert.Contains(t, resp.Results[1].Error, "not found")
}

func TestProductsHandler(t *testing.T) {
	_, productSvc, _ := newTestServices(t, 4)

	rec := post(t, Products(productSvc), "/products", `{"name":"Laser Level","category":"Surveying","daily_rate_cents":2500,"total_quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 2, created.AvailableNow)

	rec = httptest.NewRecorder()
	Products(productSvc)(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list ListPageResp[model.Product]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)

	rec = httptest.NewRecorder()
	ProductGet(productSvc)(rec, httptest.NewRequest(http.MethodGet, "/product?id="+created.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ProductGet(productSvc)(rec, httptest.NewRequest(http.MethodGet, "/product?id="+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReservationListPageHandler(t *testing.T) {
	svc, _, productID := newTestServices(t, 5)

	for i, order := range []string{"O1", "O1", "O2"} {
		rec := post(t, Reserve(svc), "/reserve", reserveBody(productID, order, 1+i*5, 3+i*5, 1))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	ReservationListPage(svc)(rec, httptest.NewRequest(http.MethodGet, "/reservations?order_id=O1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list ListPageResp[model.Reservation]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Page, 2)

	rec = httptest.NewRecorder()
	ReservationListPage(svc)(rec, httptest.NewRequest(http.MethodGet, "/reservations?page_size=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPageRejectsNonPositivePages(t *testing.T) {
	svc, productSvc, _ := newTestServices(t, 5)

	for _, target := range []string{
		"/reservations?page_num=0",
		"/reservations?page_num=-1",
		"/reservations?page_size=0",
		"/reservations?page_size=-5",
	} {
		rec := httptest.NewRecorder()
		ReservationListPage(svc)(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	Products(productSvc)(rec, httptest.NewRequest(http.MethodGet, "/products?page_num=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
