package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims() *Claims {
	now := time.Now().UTC()
	return &Claims{
		AccountID: "acct-01",
		Email:     "farmer@example.com",
		Role:      "farmer",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "acct-01",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestValidator_Validate_Success(t *testing.T) {
	v := NewValidator("test-secret")
	token := signToken(t, "test-secret", validClaims())

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-01", claims.AccountID)
	assert.Equal(t, "farmer", claims.Role)
}

func TestValidator_Validate_WrongSecret(t *testing.T) {
	v := NewValidator("test-secret")
	token := signToken(t, "other-secret", validClaims())

	_, err := v.Validate(token)
	assert.Error(t, err)
}

func TestValidator_Validate_Expired(t *testing.T) {
	v := NewValidator("test-secret")
	claims := validClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().UTC().Add(-time.Hour))
	token := signToken(t, "test-secret", claims)

	_, err := v.Validate(token)
	assert.Error(t, err)
}

func TestValidator_TokenValidator_AdaptsClaims(t *testing.T) {
	v := NewValidator("test-secret")
	token := signToken(t, "test-secret", validClaims())

	mwClaims, err := v.TokenValidator()(token)
	require.NoError(t, err)
	assert.Equal(t, "acct-01", mwClaims.AccountID)
	assert.Equal(t, "farmer@example.com", mwClaims.Email)
	assert.Equal(t, "farmer", mwClaims.Role)
}
