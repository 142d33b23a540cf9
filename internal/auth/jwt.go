package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/quillhq/quill/pkg/errors"
)

// Token types carried in the "type" claim. A refresh token presented where an
// access token is expected must be rejected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are the JWT claims issued for both token types.
type Claims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager issues and decodes HS256-signed tokens. Session storage is the
// authority on validity; the manager only vouches for signature and shape.
type TokenManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// AccessExpiry returns the access token lifetime.
func (m *TokenManager) AccessExpiry() time.Duration { return m.accessExpiry }

// RefreshExpiry returns the refresh token lifetime.
func (m *TokenManager) RefreshExpiry() time.Duration { return m.refreshExpiry }

// IssueAccessToken signs a short-lived access token for the user.
func (m *TokenManager) IssueAccessToken(userID string) (string, error) {
	return m.issue(userID, TokenTypeAccess, m.accessExpiry)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (m *TokenManager) IssueRefreshToken(userID string) (string, error) {
	return m.issue(userID, TokenTypeRefresh, m.refreshExpiry)
}

func (m *TokenManager) issue(userID, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and checks the token carries the
// expected type claim. Any failure maps to the same invalid-token error so
// callers cannot distinguish forged from expired tokens.
func (m *TokenManager) Decode(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, apperrors.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}
