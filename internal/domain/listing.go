package domain

import "time"

// ImageRef references an image stored in the external asset store.
type ImageRef struct {
	URL     string `json:"url"`
	AssetID string `json:"asset_id"`
}

// Listing represents a livestock listing owned by a seller account.
type Listing struct {
	ID          string     `json:"id"`
	SellerID    string     `json:"seller_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Price       int64      `json:"price"`
	Images      []ImageRef `json:"images,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
