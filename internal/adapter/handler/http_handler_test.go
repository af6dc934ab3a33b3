package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/catalog/internal/core/domain"
	"github.com/rl1809/catalog/internal/core/service"
	"github.com/rl1809/catalog/internal/monitoring"
)

type testServer struct {
	registry *service.Registry
	metrics  *monitoring.Metrics
	mux      *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	registry := service.GetInstance("http-" + uuid.NewString())
	metrics := monitoring.NewMetrics()
	mux := http.NewServeMux()
	NewHTTPHandler(registry, metrics).Register(mux)
	return &testServer{registry: registry, metrics: metrics, mux: mux}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func electronicsBody(id uuid.UUID, weight string) map[string]any {
	return map[string]any{
		"id":              id.String(),
		"kind":            "electronics",
		"name":            "Laptop",
		"category":        "electronics",
		"price":           "1299.00",
		"warranty_months": 24,
		"weight":          weight,
	}
}

func foodBody(id uuid.UUID, expires time.Time) map[string]any {
	return map[string]any{
		"id":              id.String(),
		"kind":            "food",
		"name":            "Milk",
		"category":        "DAIRY",
		"price":           "15.50",
		"weight":          "2.0",
		"expiration_date": domain.FormatDate(expires),
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestCreateAndGetItem(t *testing.T) {
	s := newTestServer(t)
	id := uuid.New()

	rec := s.do(t, http.MethodPost, "/api/items", electronicsBody(id, "6.0"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[ItemView](t, rec)
	assert.Equal(t, id, created.ID)
	assert.Equal(t, KindElectronics, created.Kind)
	assert.Equal(t, "Electronics", created.Category)
	assert.Equal(t, "Electronics: Laptop, Warranty: 24 months", created.Details)
	require.NotNil(t, created.ShippingCost)
	assert.Equal(t, "128", created.ShippingCost.String())
	assert.Nil(t, created.Expired)

	rec = s.do(t, http.MethodGet, "/api/items/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decode[ItemView](t, rec).ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CatalogItems))
}

func TestCreateItem_Errors(t *testing.T) {
	s := newTestServer(t)
	id := uuid.New()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", electronicsBody(id, "1")).Code)

	rec := s.do(t, http.MethodPost, "/api/items", electronicsBody(id, "1"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/items", electronicsBody(uuid.New(), "-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := electronicsBody(uuid.New(), "1")
	body["category"] = "   "
	rec = s.do(t, http.MethodPost, "/api/items", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = electronicsBody(uuid.New(), "1")
	body["kind"] = "furniture"
	rec = s.do(t, http.MethodPost, "/api/items", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/items", bytes.NewBufferString("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 1, s.registry.Len())
}

func TestGetItem_NotFoundAndBadID(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/items/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/items/not-a-uuid", nil).Code)
}

func TestUpdatePriceAndChanged(t *testing.T) {
	s := newTestServer(t)
	a, b := uuid.New(), uuid.New()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", electronicsBody(a, "1")).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", foodBody(b, time.Now())).Code)

	rec := s.do(t, http.MethodPut, "/api/items/"+b.String()+"/price", map[string]string{"price": "9.99"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "9.99", decode[ItemView](t, rec).Price.String())

	rec = s.do(t, http.MethodPut, "/api/items/"+uuid.NewString()+"/price", map[string]string{"price": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/items/"+a.String()+"/price", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	changed := decode[[]ItemView](t, s.do(t, http.MethodGet, "/api/items/changed", nil))
	require.Len(t, changed, 1)
	assert.Equal(t, b, changed[0].ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.PriceUpdates))
}

func TestDeleteItem(t *testing.T) {
	s := newTestServer(t)
	id := uuid.New()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", electronicsBody(id, "1")).Code)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/items/"+id.String(), nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/items/"+id.String(), nil).Code)

	items := decode[[]ItemView](t, s.do(t, http.MethodGet, "/api/items", nil))
	assert.Empty(t, items)
}

func TestListShippableExpiredAndCategories(t *testing.T) {
	s := newTestServer(t)
	tv, stale, fresh := uuid.New(), uuid.New(), uuid.New()
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", electronicsBody(tv, "5.0")).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", foodBody(stale, time.Now().AddDate(0, 0, -1))).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/items", foodBody(fresh, time.Now().AddDate(0, 0, 1))).Code)

	items := decode[[]ItemView](t, s.do(t, http.MethodGet, "/api/items", nil))
	require.Len(t, items, 3)
	assert.Equal(t, []uuid.UUID{tv, stale, fresh}, []uuid.UUID{items[0].ID, items[1].ID, items[2].ID})

	shippable := decode[[]ItemView](t, s.do(t, http.MethodGet, "/api/items/shippable", nil))
	require.Len(t, shippable, 3)
	assert.Equal(t, "79", shippable[0].ShippingCost.String())
	assert.Equal(t, "100", shippable[1].ShippingCost.String())

	expired := decode[[]ItemView](t, s.do(t, http.MethodGet, "/api/items/expired", nil))
	require.Len(t, expired, 1)
	assert.Equal(t, stale, expired[0].ID)
	require.NotNil(t, expired[0].Expired)
	assert.True(t, *expired[0].Expired)

	groups := decode[[]CategoryGroup](t, s.do(t, http.MethodGet, "/api/categories", nil))
	require.Len(t, groups, 2)
	assert.Equal(t, "Dairy", groups[0].Category)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "Electronics", groups[1].Category)
	assert.Len(t, groups[1].Items, 1)
}

func TestCategories_Empty(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]CategoryGroup](t, rec))
}

func TestRequestsAreCounted(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/items/"+uuid.NewString(), nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/api/items/{id}", "404")))
}
