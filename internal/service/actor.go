package service

import "github.com/SHANTO612/poshur-sheba-hub-sub000/internal/domain"

// Actor is the already-authenticated identity performing an operation, as
// extracted from the access token by the auth middleware.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether the actor has administrative privileges.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}
