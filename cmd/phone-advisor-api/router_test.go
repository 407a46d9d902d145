package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/phone-advisor/cmd/phone-advisor-api/middleware"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/cache"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/catalog"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/observability"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/retrieval"
	"github.com/spherical-ai/spherical/libs/phone-advisor/internal/storage"
)

type memoryStore struct {
	phones []*storage.Phone
	err    error
}

func (s *memoryStore) ListModelNames(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	names := make([]string, 0, len(s.phones))
	for _, p := range s.phones {
		names = append(names, p.ModelName)
	}
	return names, nil
}

func (s *memoryStore) GetByModelName(_ context.Context, name string) (*storage.Phone, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.phones {
		if p.ModelName == name {
			return p, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memoryStore) ListAll(context.Context) ([]*storage.Phone, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.phones, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func newTestServer(t *testing.T, store *memoryStore, ping error) *httptest.Server {
	t.Helper()
	logger := observability.NopLogger()

	index, err := catalog.Load(context.Background(), store, logger)
	require.NoError(t, err)

	advisor := retrieval.NewRouter(logger, store, cache.NewMemoryClient(100), retrieval.RouterConfig{
		CacheAnswers: true,
	})

	srv := httptest.NewServer(NewRouter(logger, &AppConfig{
		DB:      fakePinger{err: ping},
		Catalog: index,
		Advisor: advisor,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func samsungStore() *memoryStore {
	return &memoryStore{phones: []*storage.Phone{
		{
			ModelName: "Galaxy S23 Ultra",
			Battery:   storage.StringPtr("5000mAh"),
			Camera:    storage.StringPtr("200MP"),
			Price:     storage.StringPtr("$1199"),
		},
		{
			ModelName: "Galaxy S22 Ultra",
			Battery:   storage.StringPtr("5000mAh"),
			Camera:    storage.StringPtr("108MP"),
			Price:     storage.StringPtr("$1099"),
		},
		{
			ModelName: "Galaxy A54",
			Battery:   storage.StringPtr("5000mAh"),
			Price:     storage.StringPtr("$449"),
		},
	}}
}

func postAsk(t *testing.T, srv *httptest.Server, path, body string) (int, map[string]string) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, samsungStore(), nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.TraceIDHeader))
}

func TestRouter_Ready(t *testing.T) {
	resp, err := http.Get(newTestServer(t, samsungStore(), nil).URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(newTestServer(t, samsungStore(), errors.New("db down")).URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_Ask(t *testing.T) {
	srv := newTestServer(t, samsungStore(), nil)

	status, body := postAsk(t, srv, "/ask", `{"question":"Specs of Galaxy S23 Ultra"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["answer"], "Galaxy S23 Ultra specs:")
	assert.Contains(t, body["answer"], "Battery: 5000mAh")

	status, body = postAsk(t, srv, "/api/v1/ask", `{"question":"Compare Galaxy S23 Ultra and Galaxy S22 Ultra for photography"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["answer"], "Galaxy S22 Ultra specs:")
	assert.Contains(t, body["answer"], "- Camera:")

	status, body = postAsk(t, srv, "/ask", `{"question":"best battery under $500"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Best battery under $500: Galaxy A54 (5000mAh, price: $449).", body["answer"])

	status, body = postAsk(t, srv, "/ask", `{"question":"hello"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, retrieval.MsgHelp, body["answer"])

	status, body = postAsk(t, srv, "/ask", `{"question":""}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, retrieval.MsgHelp, body["answer"])

	status, _ = postAsk(t, srv, "/ask", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_AskStoreFailure(t *testing.T) {
	store := samsungStore()
	srv := newTestServer(t, store, nil)
	store.err = errors.New("connection refused")

	status, body := postAsk(t, srv, "/ask", `{"question":"best battery under $1000"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "could not answer question", body["error"])
}

func TestRouter_CatalogReload(t *testing.T) {
	store := samsungStore()
	srv := newTestServer(t, store, nil)

	status, body := postAsk(t, srv, "/ask", `{"question":"Specs of Galaxy Z Flip5"}`)
	require.Equal(t, http.StatusOK, status)
	before := body["answer"]

	store.phones = append(store.phones, &storage.Phone{
		ModelName: "Galaxy Z Flip5",
		Battery:   storage.StringPtr("3700mAh"),
	})

	resp, err := http.Post(srv.URL+"/api/v1/catalog/reload", "application/json", nil)
	require.NoError(t, err)
	var snap struct {
		Version int64    `json:"version"`
		Models  []string `json:"models"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, int64(2), snap.Version)
	assert.Contains(t, snap.Models, "Galaxy Z Flip5")

	status, body = postAsk(t, srv, "/ask", `{"question":"Specs of Galaxy Z Flip5"}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEqual(t, before, body["answer"])
	assert.Contains(t, body["answer"], "Galaxy Z Flip5 specs:")
}

func TestRouter_ChatPageAndCORS(t *testing.T) {
	srv := newTestServer(t, samsungStore(), nil)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/ask", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
