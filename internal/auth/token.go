package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for unparsable, expired or mis-signed tokens
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims issued at login
type Claims struct {
	RetailerID string      `json:"retailer_id"`
	Role       models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the resolved caller behind a request
type Identity struct {
	UserID     uuid.UUID
	RetailerID uuid.UUID
	Role       models.Role
}

// IssueToken signs an HS256 token for user valid for ttl
func IssueToken(user *models.User, secret string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RetailerID: user.RetailerID.String(),
		Role:       user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates tokenString and resolves the caller identity
func ParseToken(tokenString, secret string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	retailerID, err := uuid.Parse(claims.RetailerID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad retailer", ErrInvalidToken)
	}
	return Identity{UserID: userID, RetailerID: retailerID, Role: claims.Role}, nil
}
