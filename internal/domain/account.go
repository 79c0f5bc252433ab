package domain

import "time"

// Account represents a platform account. The Rating field is a derived
// aggregate maintained exclusively by the rating service; it is never
// written by any other caller.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsProvider reports whether the account offers veterinary services.
func (a *Account) IsProvider() bool {
	return IsProviderRole(a.Role)
}

// IsAdmin reports whether the account has administrative privileges.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
