package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a JWT token. SchoolID scopes which
// school's records and catalog the caller may read; empty means any school.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	SchoolID string    `json:"school_id,omitempty"`
	Role     string    `json:"role,omitempty"`
}

// CanAccessSchool reports whether the claims cover schoolID.
func (c *TokenClaims) CanAccessSchool(schoolID string) bool {
	return c.SchoolID == "" || c.SchoolID == schoolID
}
