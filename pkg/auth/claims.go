package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the typed JWT the storefront receives at sign-in.
type SessionClaims struct {
	CustomerID string `json:"customer_id,omitempty"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
