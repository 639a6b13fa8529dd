package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-ecommerce-catalog/internal/catalog"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/memory"
	"github.com/ariefcatur/go-ecommerce-catalog/internal/metrics"
)

type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func (f *fakeIdempotency) Lookup(_ context.Context, userID, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.keys[userID+"/"+key]
	return id, ok, nil
}

func (f *fakeIdempotency) Remember(_ context.Context, userID, key, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[userID+"/"+key]; !ok {
		f.keys[userID+"/"+key] = orderID
	}
	return nil
}

type testServer struct {
	router *chi.Mux
	store  *memory.Store
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	store := memory.New()
	r := NewRouter(store, metrics.NewHTTPMetricsWithRegistry(prometheus.NewRegistry()))
	(&ProductsHandler{Service: catalog.NewProductService(store, nil, "test")}).Register(r)
	(&OrdersHandler{
		Service:     catalog.NewOrderService(store, store, nil, "test"),
		Idempotency: &fakeIdempotency{keys: map[string]string{}},
	}).Register(r)
	return testServer{router: r, store: store}
}

func (s testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s testServer) createProduct(t *testing.T, name string, price float64, sizes ...string) string {
	t.Helper()
	ss := []map[string]any{}
	for _, sz := range sizes {
		ss = append(ss, map[string]any{"size": sz, "quantity": 5})
	}
	rec := s.do(t, http.MethodPost, "/products", map[string]any{"name": name, "price": price, "sizes": ss})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out IDResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type rawList struct {
	Data []map[string]any `json:"data"`
	Page map[string]any   `json:"page"`
}

func TestProducts_RoundTripCaseInsensitive(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Shirt", 19.99, "M")

	rec := s.do(t, http.MethodGet, "/products?name=shirt", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	raw := decode[rawList](t, rec)
	require.Len(t, raw.Data, 1)
	assert.Equal(t, id, raw.Data[0]["id"])
	assert.Equal(t, "Shirt", raw.Data[0]["name"])
	assert.Equal(t, 19.99, raw.Data[0]["price"])
	assert.NotContains(t, raw.Data[0], "sizes")

	assert.Contains(t, raw.Page, "next")
	assert.Nil(t, raw.Page["next"])
	assert.Nil(t, raw.Page["previous"])
	assert.EqualValues(t, 10, raw.Page["limit"])
}

func TestProducts_SizeFilter(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, "Small", 5, "S")
	medium := s.createProduct(t, "Medium", 6, "M", "L")

	out := decode[ProductsListResp](t, s.do(t, http.MethodGet, "/products?size=M", nil))
	require.Len(t, out.Data, 1)
	assert.Equal(t, medium, out.Data[0].ID)
}

func TestProducts_Pagination(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 5; i++ {
		s.createProduct(t, fmt.Sprintf("Item %d", i), 1, "M")
	}

	out := decode[ProductsListResp](t, s.do(t, http.MethodGet, "/products?limit=2&offset=2", nil))
	require.Len(t, out.Data, 2)
	assert.Equal(t, "Item 2", out.Data[0].Name)
	require.NotNil(t, out.Page.Next)
	assert.Equal(t, "4", *out.Page.Next)
	require.NotNil(t, out.Page.Previous)
	assert.Equal(t, 0, *out.Page.Previous)
	assert.Equal(t, 2, out.Page.Limit)
}

func TestProducts_BadQuery(t *testing.T) {
	s := newTestServer(t)
	for _, q := range []string{"limit=0", "limit=101", "limit=abc", "offset=-1", "offset=x", "name=("} {
		rec := s.do(t, http.MethodGet, "/products?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestProducts_HugeOffset(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, "Shirt", 1, "M")

	rec := s.do(t, http.MethodGet, "/products?offset=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[ProductsListResp](t, rec)
	assert.Empty(t, out.Data)
	assert.Nil(t, out.Page.Next)
}

func TestProducts_InvalidNamePatternMessage(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/products?name=(", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid name pattern")
}

// missingIdempotency misses the first n lookups, as two requests racing past
// the lookup would.
type missingIdempotency struct {
	*fakeIdempotency
	n int
}

func (m *missingIdempotency) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	if m.n > 0 {
		m.n--
		return "", false, nil
	}
	return m.fakeIdempotency.Lookup(ctx, userID, key)
}

func TestOrders_IdempotencyFirstRememberedWins(t *testing.T) {
	s := newTestServer(t)
	shirt := s.createProduct(t, "Shirt", 10, "M")

	r := chi.NewRouter()
	(&OrdersHandler{
		Service:     catalog.NewOrderService(s.store, s.store, nil, "test"),
		Idempotency: &missingIdempotency{fakeIdempotency: &fakeIdempotency{keys: map[string]string{}}, n: 2},
	}).Register(r)

	post := func() string {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(map[string]any{
			"userId": "user-1",
			"items":  []map[string]any{{"productId": shirt, "qty": 1}},
		}))
		req := httptest.NewRequest(http.MethodPost, "/orders", &buf)
		req.Header.Set(HeaderIdempotencyKey, "k-race")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		return decode[IDResp](t, rec).ID
	}

	first, second := post(), post()
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, s.store.OrderCount())

	assert.Equal(t, first, post())
	assert.Equal(t, 2, s.store.OrderCount())
}

func TestProducts_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/products", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/products", map[string]any{"name": "x", "price": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/products", map[string]any{"name": "x", "price": -1, "sizes": []any{}})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestOrders_UnknownProduct(t *testing.T) {
	s := newTestServer(t)
	shirt := s.createProduct(t, "Shirt", 10, "M")

	rec := s.do(t, http.MethodPost, "/orders", map[string]any{
		"userId": "user-1",
		"items":  []map[string]any{{"productId": shirt, "qty": 1}, {"productId": "65f1c0ffee0000000000beef", "qty": 1}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "One or more products not found", decode[map[string]string](t, rec)["error"])
	assert.Equal(t, 0, s.store.OrderCount())
}

func TestOrders_MalformedProductID(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/orders", map[string]any{
		"userId": "user-1",
		"items":  []map[string]any{{"productId": "bogus", "qty": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, s.store.OrderCount())
}

func TestOrders_CreateAndListWithDuplicatesAndDeletion(t *testing.T) {
	s := newTestServer(t)
	shirt := s.createProduct(t, "Shirt", 19.99, "M")
	hat := s.createProduct(t, "Hat", 5, "S")

	rec := s.do(t, http.MethodPost, "/orders", map[string]any{
		"userId": "user-1",
		"items": []map[string]any{
			{"productId": shirt, "qty": 1},
			{"productId": shirt, "qty": 2},
			{"productId": hat, "qty": 1},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	orderID := decode[IDResp](t, rec).ID

	out := decode[OrdersListResp](t, s.do(t, http.MethodGet, "/orders/user-1", nil))
	require.Len(t, out.Data, 1)
	assert.Equal(t, orderID, out.Data[0].ID)
	require.Len(t, out.Data[0].Items, 3)
	assert.Equal(t, ProductDetails{Name: "Shirt", ID: shirt}, out.Data[0].Items[0].ProductDetails)
	assert.InDelta(t, 64.97, out.Data[0].Total, 1e-9)

	require.True(t, s.store.DeleteProduct(hat))
	out = decode[OrdersListResp](t, s.do(t, http.MethodGet, "/orders/user-1", nil))
	require.Len(t, out.Data[0].Items, 2)
	assert.InDelta(t, 59.97, out.Data[0].Total, 1e-9)
	assert.Nil(t, out.Page.Next)
}

func TestOrders_IdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	shirt := s.createProduct(t, "Shirt", 10, "M")
	body := map[string]any{"userId": "user-1", "items": []map[string]any{{"productId": shirt, "qty": 1}}}

	first := decode[IDResp](t, s.do(t, http.MethodPost, "/orders", body, HeaderIdempotencyKey, "k-1"))
	again := s.do(t, http.MethodPost, "/orders", body, HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, first.ID, decode[IDResp](t, again).ID)
	assert.Equal(t, 1, s.store.OrderCount())

	s.do(t, http.MethodPost, "/orders", body)
	assert.Equal(t, 2, s.store.OrderCount())
}

func TestOrders_BadPage(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/orders/user-1?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreUnavailable(t *testing.T) {
	s := newTestServer(t)
	s.store.SetUnavailable(true)

	rec := s.do(t, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, catalog.ErrUnavailable.Error(), decode[map[string]string](t, rec)["error"])

	rec = s.do(t, http.MethodGet, "/orders/user-1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth_RecoversWithoutRestart(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ecommerce Backend API is running", decode[map[string]string](t, rec)["message"])

	s.store.SetUnavailable(true)
	rec = s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "Database connection failed")

	s.store.SetUnavailable(false)
	rec = s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "healthy", "database": "connected"}, decode[map[string]string](t, rec))
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_http_requests_total{method="GET",route="/",status="200"} 1`)
}

func TestWriteError_Internal(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("decode product: boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "decode product: boom", decode[map[string]string](t, rec)["error"])
}

type addrError struct{}

func (addrError) Error() string        { return "Database connection failed at mongodb://x" }
func (addrError) Is(target error) bool { return target == catalog.ErrUnavailable }

func TestUnavailableMessageStripsPrefixes(t *testing.T) {
	err := fmt.Errorf("count products: %w", addrError{})
	assert.Equal(t, "Database connection failed at mongodb://x", unavailableMessage(err))
}
