package domain

import "time"

// Product represents a farm product (dairy, produce, feed) owned by a seller
// account. Price is in minor currency units.
type Product struct {
	ID          string     `json:"id"`
	SellerID    string     `json:"seller_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       int64      `json:"price"`
	Quantity    int        `json:"quantity"`
	Images      []ImageRef `json:"images,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
