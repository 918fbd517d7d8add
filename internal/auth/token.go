package auth

import (
	"errors"
	"time"

	"qualcode/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// IssueToken signs an HS256 token for the given user. It pairs with
// HMACVerifier and is used by the seed command to hand out dev credentials.
func IssueToken(secret, userID, email string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret cannot be empty")
	}
	now := time.Now()
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Role:  "authenticated",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
