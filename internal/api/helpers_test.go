package api

import (
	"errors"

	"github.com/google/uuid"

	"github.com/pageza/nutrition-engine/backend/internal/types"
)

// tokenTable maps bearer tokens to claims.
type tokenTable map[string]*types.TokenClaims

func (t tokenTable) ValidateToken(token string) (*types.TokenClaims, error) {
	if c, ok := t[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

var testTokens = tokenTable{
	"district": {UserID: uuid.MustParse("00000000-0000-0000-0000-000000000001")},
	"school-1": {UserID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), SchoolID: "school-1"},
}
