package auth

import "qualcode/internal/domain/models"

// JWTVerifier validates bearer tokens for the HTTP middleware.
type JWTVerifier interface {
	// VerifyToken returns the parsed claims, or domain.ErrUnauthorized when the
	// token is malformed, expired, badly signed, or lacks a subject.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
