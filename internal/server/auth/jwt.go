// Package auth mints and verifies the HS256 access tokens that guard the
// note endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notesync/internal/common"
	"github.com/dmitrijs2005/notesync/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the standard claims plus the name of the syncing client.
type Claims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
}

func GenerateToken(clientID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	jti, err := shared.MakeRandHexString(16)
	if err != nil {
		return "", fmt.Errorf("error generating token id: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			Issuer:    "notesync",
			ID:        jti,
		},
		ClientID: clientID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetClientIDFromToken verifies the signature and expiry. An expired token
// yields common.ErrTokenExpired, anything else unusable common.ErrInvalidToken.
func GetClientIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.ClientID, nil
}
