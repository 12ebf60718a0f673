// Package common defines shared sentinel errors and small helpers used
// across the task-manager server layers. Callers should match the errors
// with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Uniqueness conflicts surfaced during registration and profile updates.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired         = errors.New("token expired")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRecoveryTokenInvalid = errors.New("recovery token invalid or already used")
	ErrRecoveryTokenExpired = errors.New("recovery token expired")
)
