package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/internal/storage"
)

// assetEntry stores metadata about a stored asset in memory.
type assetEntry struct {
	AssetID     string
	ContentType string
	Size        int
	URL         string
}

// Store implements storage.AssetStore using an in-memory map.
// It stores metadata only (no actual asset bytes) for testing and development.
type Store struct {
	mu      sync.RWMutex
	assets  map[string]*assetEntry
	baseURL string
}

// New creates a new in-memory asset store.
func New(baseURL string) *Store {
	return &Store{
		assets:  make(map[string]*assetEntry),
		baseURL: baseURL,
	}
}

// Store saves asset metadata in memory and returns the generated URL.
func (s *Store) Store(_ context.Context, input *storage.StoreInput) (*storage.StoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	url := fmt.Sprintf("%s/assets/%s", s.baseURL, input.AssetID)

	s.assets[input.AssetID] = &assetEntry{
		AssetID:     input.AssetID,
		ContentType: input.ContentType,
		Size:        len(input.Data),
		URL:         url,
	}

	return &storage.StoreResult{
		AssetID: input.AssetID,
		URL:     url,
	}, nil
}

// Delete removes asset metadata from memory. Absent assets are a no-op so
// cascade deletes stay idempotent.
func (s *Store) Delete(_ context.Context, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.assets, assetID)
	return nil
}

// Len returns the number of stored assets (used in tests).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}
