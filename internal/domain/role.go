package domain

// Account role constants.
const (
	RoleFarmer       = "farmer"
	RoleSeller       = "seller"
	RoleVeterinarian = "veterinarian"
	RoleBuyer        = "buyer"
	RoleAdmin        = "admin"
)

// ValidRoles returns all valid account roles.
func ValidRoles() []string {
	return []string{
		RoleFarmer,
		RoleSeller,
		RoleVeterinarian,
		RoleBuyer,
		RoleAdmin,
	}
}

// IsValidRole checks if a role string is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// IsProviderRole reports whether the role offers veterinary services and can
// therefore be rated and booked for appointments.
func IsProviderRole(role string) bool {
	return role == RoleVeterinarian
}

// IsSellerRole reports whether the role may own listings and products.
func IsSellerRole(role string) bool {
	return role == RoleSeller || role == RoleFarmer
}
