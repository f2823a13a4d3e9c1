// Package auth signs and verifies the session token carried in the session
// cookie. A token holds either an authenticated user id or a guest token,
// plus a unique id used for revocation on logout.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/goalkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims include the standard registered claims plus the session identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"uid,omitempty"`
	GuestToken string `json:"gt,omitempty"`
}

// timeNow is a seam for tests.
var timeNow = time.Now

// GenerateSessionToken signs a session token valid for ttl. It returns the
// token and its id (jti).
func GenerateSessionToken(userID, guestToken string, secretKey []byte, ttl time.Duration) (string, string, error) {
	now := timeNow()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:     userID,
		GuestToken: guestToken,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", "", err
	}

	return tokenString, jti, nil
}

// ParseSessionToken verifies the signature and expiry of tokenString.
// Expired tokens yield common.ErrTokenExpired, anything else invalid yields
// common.ErrInvalidToken.
func ParseSessionToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(timeNow),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.ID == "" || (claims.UserID == "" && claims.GuestToken == "") {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
