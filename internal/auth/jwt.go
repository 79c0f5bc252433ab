package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SHANTO612/poshur-sheba-hub-sub000/pkg/middleware"
)

// Claims represents the JWT claims carried by access tokens issued by the
// identity service. This core only validates tokens; it never issues them.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Validator validates access tokens signed with a shared HMAC secret.
type Validator struct {
	secret []byte
}

// NewValidator creates a token validator with the given shared secret.
func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// Validate parses and validates an access token, returning the claims.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}

	return claims, nil
}

// TokenValidator adapts the validator to the auth middleware contract.
func (v *Validator) TokenValidator() middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := v.Validate(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			AccountID: claims.AccountID,
			Email:     claims.Email,
			Role:      claims.Role,
		}, nil
	}
}
