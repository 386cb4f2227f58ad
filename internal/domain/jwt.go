package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the custom JWT claims carried by access tokens
type AccessClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
