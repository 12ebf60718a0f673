// Package auth issues and parses the two JWT kinds used by the server:
// short-lived access tokens carrying the user id and email, and long-lived
// refresh tokens signed with a separate secret. Refresh tokens are also
// persisted server-side, so possession of a validly signed refresh token is
// necessary but not sufficient to refresh a session.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gestortareas/internal/common"
)

const refreshTokenType = "refresh"

// AccessClaims are the claims embedded in access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// RefreshClaims are the claims embedded in refresh tokens.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"id"`
	TokenType string `json:"tipo"`
}

// GenerateAccessToken mints an HS256 access token for the given user.
func GenerateAccessToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secretKey)
}

// GenerateRefreshToken mints an HS256 refresh token for the given user.
func GenerateRefreshToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:    userID,
		TokenType: refreshTokenType,
	})

	return token.SignedString(secretKey)
}

// ParseAccessToken validates an access token and returns its claims.
// Expired tokens yield common.ErrTokenExpired, anything else invalid yields
// common.ErrInvalidToken.
func ParseAccessToken(tokenString string, secretKey []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// ParseRefreshToken validates a refresh token and returns the user id it was
// issued to. Tokens without the refresh type marker are rejected even when
// correctly signed, so an access token can never stand in for a refresh one.
func ParseRefreshToken(tokenString string, secretKey []byte) (string, error) {
	claims := &RefreshClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.TokenType != refreshTokenType {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
