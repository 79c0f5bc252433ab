package storage

import "context"

// AssetStore is the external store holding listing and product images. The
// core only ever stores and deletes opaque assets by ID; uploads originate
// elsewhere.
type AssetStore interface {
	// Store saves an asset and returns its public URL.
	Store(ctx context.Context, input *StoreInput) (*StoreResult, error)

	// Delete removes an asset by its ID. Deleting an absent asset is not an
	// error.
	Delete(ctx context.Context, assetID string) error
}

// StoreInput holds the parameters for storing an asset.
type StoreInput struct {
	AssetID     string
	ContentType string
	Data        []byte
}

// StoreResult holds the result of a successful store.
type StoreResult struct {
	AssetID string
	URL     string
}
