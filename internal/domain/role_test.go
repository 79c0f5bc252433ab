package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	for _, r := range ValidRoles() {
		assert.True(t, IsValidRole(r))
	}
	assert.False(t, IsValidRole("superuser"))
	assert.False(t, IsValidRole(""))
}

func TestIsProviderRole(t *testing.T) {
	assert.True(t, IsProviderRole(RoleVeterinarian))
	assert.False(t, IsProviderRole(RoleFarmer))
	assert.False(t, IsProviderRole(RoleAdmin))
}

func TestIsSellerRole(t *testing.T) {
	assert.True(t, IsSellerRole(RoleSeller))
	assert.True(t, IsSellerRole(RoleFarmer))
	assert.False(t, IsSellerRole(RoleBuyer))
	assert.False(t, IsSellerRole(RoleVeterinarian))
}

func TestIsValidScore(t *testing.T) {
	assert.False(t, IsValidScore(0))
	assert.True(t, IsValidScore(1))
	assert.True(t, IsValidScore(5))
	assert.False(t, IsValidScore(6))
	assert.False(t, IsValidScore(-1))
}
