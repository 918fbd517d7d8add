package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"qualcode/internal/domain"
	"qualcode/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier implements JWTVerifier using public keys fetched from a JWKS endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier backed by the given JWKS URL.
// keyfunc caches the key set and refreshes it in the background until Close.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "mode", "jwks", "jwks_url", jwksURL)

	return &JWKSVerifier{jwks: jwks, cancel: cancel, logger: logger}, nil
}

// VerifyToken validates an RS256/ES256 token against the key set.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	return parseClaims(tokenString, v.jwks.Keyfunc, []string{"RS256", "ES256"}, v.logger)
}

// Close stops the background key refresh.
func (v *JWKSVerifier) Close() error {
	v.cancel()
	v.logger.Info("JWT verifier closed")
	return nil
}

// HMACVerifier implements JWTVerifier for tokens signed with a shared secret.
// Used in development and by self-hosted deployments without an identity provider.
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a verifier for HS256 tokens.
func NewHMACVerifier(secret string, logger *slog.Logger) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	logger.Info("JWT verifier initialized", "mode", "hmac")
	return &HMACVerifier{secret: []byte(secret), logger: logger}, nil
}

// VerifyToken validates an HS256 token.
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	keyFn := func(*jwt.Token) (any, error) { return v.secret, nil }
	return parseClaims(tokenString, keyFn, []string{"HS256"}, v.logger)
}

func (v *HMACVerifier) Close() error { return nil }

// parseClaims restricts the accepted algorithms up front, which rules out
// algorithm confusion between the key types.
func parseClaims(tokenString string, keyFn jwt.Keyfunc, algs []string, logger *slog.Logger) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, keyFn, jwt.WithValidMethods(algs))
	if err != nil {
		logger.Debug("token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}
