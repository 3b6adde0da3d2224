package cmd

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"shiptrack/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(entityStoreURL string) Config {
	return Config{
		HTTPPort:            "0",
		StorageBackend:      StorageMemory,
		EntityStoreURL:      entityStoreURL,
		EntityStoreTimeout:  time.Second,
		ObserverIdleTimeout: 90 * time.Second,
		ObserverBuffer:      8,
	}
}

func newEntityStore(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/routes":
			_, _ = w.Write([]byte(`{"routes":[{"id":1,"name":"North"}]}`))
		case "/api/carriers":
			_, _ = w.Write([]byte(`{"carriers":[{"id":1,"name":"ACME"}]}`))
		case "/api/vehicles":
			_, _ = w.Write([]byte(`{"vehicles":[{"id":1,"plate_number":"ABC-123","capacity":10,"type":"van"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompositionRoot_MemoryBackendEndToEnd(t *testing.T) {
	// Given
	store := newEntityStore(t)
	root, err := NewCompositionRoot(t.Context(), memoryConfig(store.URL), nil, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	e, err := root.NewRouter(t.Context())
	require.NoError(t, err)

	call := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// When
	created := call(http.MethodPost, "/api/shipments",
		`{"weight":3,"dimensions":"10x10x10","product_type":"Books","address":"Elm st. 5"}`)
	assigned := call(http.MethodPut, "/api/shipments/assign",
		`{"shipmentId":1,"route":"North","carrier":"ACME","vehicle":"ABC-123"}`)
	delivered := call(http.MethodPut, "/api/shipments/1/status", `{"newStatus":"Delivered"}`)
	status := call(http.MethodGet, "/api/shipments/1/status", "")

	// Then
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	require.Equal(t, http.StatusOK, assigned.Code, assigned.Body.String())
	require.Equal(t, http.StatusOK, delivered.Code, delivered.Body.String())
	require.Equal(t, http.StatusOK, status.Code)
	assert.Contains(t, status.Body.String(), `"currentStatus":"Delivered"`)
}

func TestCompositionRoot_UnknownReference(t *testing.T) {
	store := newEntityStore(t)
	root, err := NewCompositionRoot(t.Context(), memoryConfig(store.URL), nil, logger.NewNop())
	require.NoError(t, err)
	handler := root.CreateAssignShipmentCommandHandler()
	assert.NotNil(t, handler)

	e, err := root.NewRouter(t.Context())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/shipments",
		strings.NewReader(`{"weight":1,"dimensions":"1x1x1","product_type":"Toys","address":"Oak st. 2"}`))
	req.Header.Set("Content-Type", "application/json")
	e.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodPut, "/api/shipments/assign",
		strings.NewReader(`{"shipmentId":1,"route":"South","carrier":"ACME","vehicle":"ABC-123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestCompositionRoot_PostgresNeedsDatabase(t *testing.T) {
	cfg := memoryConfig("http://localhost:1")
	cfg.StorageBackend = StoragePostgres

	_, err := NewCompositionRoot(t.Context(), cfg, nil, logger.NewNop())

	assert.Error(t, err)
}

func TestCompositionRoot_JobManagerStarts(t *testing.T) {
	cfg := memoryConfig("http://localhost:1")
	root, err := NewCompositionRoot(t.Context(), cfg, nil, logger.NewNop())
	require.NoError(t, err)

	jm := root.NewJobManager()

	require.NoError(t, jm.StartAll())
	jm.StopAll()
}

func TestCompositionRoot_EntityStoreToken(t *testing.T) {
	var auth atomic.Value
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"carriers":[{"id":1,"name":"ACME"}]}`))
	}))
	t.Cleanup(store.Close)
	cfg := memoryConfig(store.URL)
	cfg.EntityStoreToken = "s3cret"
	root, err := NewCompositionRoot(t.Context(), cfg, nil, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, root.entityStore.ResolveCarrier(t.Context(), "ACME"))
	assert.Equal(t, "Bearer s3cret", auth.Load())
}

func dialObservers(t *testing.T, cfg Config, origin string) (*http.Response, error) {
	t.Helper()
	root, err := NewCompositionRoot(t.Context(), cfg, nil, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })
	e, err := root.NewRouter(t.Context())
	require.NoError(t, err)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	header := http.Header{}
	header.Set("Origin", origin)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/ws", header)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return resp, err
}

func TestCompositionRoot_ObserverOrigins(t *testing.T) {
	cfg := memoryConfig("http://localhost:1")
	cfg.ObserverAllowedOrigins = []string{"http://localhost:5173"}

	resp, err := dialObservers(t, cfg, "http://localhost:5173")
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	resp, err = dialObservers(t, cfg, "https://evil.example.com")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCompositionRoot_ObserverOriginsDefaultToSameOrigin(t *testing.T) {
	resp, err := dialObservers(t, memoryConfig("http://localhost:1"), "http://localhost:5173")

	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
