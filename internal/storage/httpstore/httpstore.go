package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage"
	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/httpclient"
)

// Store implements storage.AssetStore against the remote asset service over
// HTTP. All calls go through a circuit breaker so a degraded asset service
// cannot stall entity deletion.
type Store struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// Config holds asset store client configuration.
type Config struct {
	BaseURL string
	Client  httpclient.Config
	Breaker httpclient.CircuitBreakerConfig
}

// DefaultConfig returns sensible defaults for the asset store client.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Client:  httpclient.DefaultConfig(),
		Breaker: httpclient.DefaultCircuitBreakerConfig("asset-store"),
	}
}

// New creates a new HTTP-backed asset store.
func New(cfg Config, logger *slog.Logger) *Store {
	base := httpclient.New(cfg.Client)
	return &Store{
		client:  httpclient.NewCircuitBreakerClient(base, cfg.Breaker, logger),
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

type storeResponse struct {
	AssetID string `json:"asset_id"`
	URL     string `json:"url"`
}

// Store saves an asset via the remote service and returns its public URL.
func (s *Store) Store(ctx context.Context, input *storage.StoreInput) (*storage.StoreResult, error) {
	payload, err := json.Marshal(map[string]any{
		"asset_id":     input.AssetID,
		"content_type": input.ContentType,
		"data":         input.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal asset payload: %w", err)
	}

	resp, err := s.client.Post(ctx, s.baseURL+"/assets", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("store asset %s: %w", input.AssetID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "asset-store")
	}

	var out storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode asset response: %w", err)
	}

	return &storage.StoreResult{AssetID: out.AssetID, URL: out.URL}, nil
}

// Delete removes an asset by ID. A 404 from the asset service is treated as
// success so repeated cascade invocations stay idempotent.
func (s *Store) Delete(ctx context.Context, assetID string) error {
	resp, err := s.client.Delete(ctx, s.baseURL+"/assets/"+url.PathEscape(assetID))
	if err != nil {
		return fmt.Errorf("delete asset %s: %w", assetID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	default:
		return httpclient.ParseResponseError(resp, "asset-store")
	}
}
