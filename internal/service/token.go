package service

import (
	"fmt"

	"goingmarry-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs and verifies bearer tokens. Tokens carry the seller's
// id, email and admin flag and are deliberately unbounded in time; a seller
// stays signed in until they log out.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service with the given signing secret.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// sessionClaims is the JWT payload for a seller session.
type sessionClaims struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Generate signs a token for the given seller.
func (s *TokenService) Generate(seller *model.Seller) (string, error) {
	claims := sessionClaims{
		ID:      seller.ID,
		Email:   seller.Email,
		IsAdmin: seller.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the identity it carries.
func (s *TokenService) Verify(tokenStr string) (*model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return &model.Identity{
		ID:      claims.ID,
		Email:   claims.Email,
		IsAdmin: claims.IsAdmin,
	}, nil
}
