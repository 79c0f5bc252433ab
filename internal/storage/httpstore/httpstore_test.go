package httpstore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/httpclient"
)

func newTestStore(t *testing.T, serverURL string) *Store {
	t.Helper()
	cfg := DefaultConfig(serverURL)
	cfg.Client = httpclient.Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10}
	cfg.Breaker.Name = "asset-store-" + t.Name()
	return New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHTTPStore_Store_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assets", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "asset-1", body["asset_id"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"asset_id": "asset-1",
			"url":      "https://cdn.example.com/assets/asset-1",
		})
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)

	result, err := store.Store(context.Background(), &storage.StoreInput{
		AssetID:     "asset-1",
		ContentType: "image/jpeg",
		Data:        []byte("fake-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "asset-1", result.AssetID)
	assert.Equal(t, "https://cdn.example.com/assets/asset-1", result.URL)
}

func TestHTTPStore_Delete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/assets/asset-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)

	err := store.Delete(context.Background(), "asset-1")
	assert.NoError(t, err)
}

func TestHTTPStore_Delete_AbsentAssetIsNoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "asset not found"},
		})
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)

	// Re-deleting a gone asset must not fail; the cascade relies on it.
	err := store.Delete(context.Background(), "already-gone")
	assert.NoError(t, err)
}

func TestHTTPStore_Delete_ForbiddenSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "FORBIDDEN", "message": "not allowed"},
		})
	}))
	defer server.Close()

	store := newTestStore(t, server.URL)

	err := store.Delete(context.Background(), "asset-1")
	assert.Error(t, err)
}
