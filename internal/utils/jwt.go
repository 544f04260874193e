// Package utils contains small helpers for admin token minting and password
// verification.
package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminToken is a signed bearer token for the shared admin identity.
type AdminToken struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// NewAdminToken mints an HS256 token carrying the admin role.  The subject is
// the shared admin username; there are no per-user identities in this system.
func NewAdminToken(secret, username string, ttlMin int) (AdminToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return AdminToken{}, err
	}
	return AdminToken{Token: signed, ExpiresAt: exp.Unix()}, nil
}
