package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pageza/nutrition-engine/backend/internal/types"
)

const (
	tokenIssuer = "nutrition-engine"
	tokenTTL    = 24 * time.Hour
)

// TokenService signs and validates HS256 API tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: tokenTTL, now: time.Now}
}

// GenerateToken signs claims, filling issuer, subject and lifetime when unset.
func (s *TokenService) GenerateToken(claims *types.TokenClaims) (string, error) {
	if claims.UserID == uuid.Nil {
		return "", errors.New("token claims need a user id")
	}
	now := s.now()
	if claims.Issuer == "" {
		claims.Issuer = tokenIssuer
	}
	if claims.Subject == "" {
		claims.Subject = claims.UserID.String()
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
