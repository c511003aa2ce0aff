// Package auth issues and verifies the bearer tokens that identify the
// profile behind order and payment requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ErrMissingProfile is returned for a valid token that names no profile.
var ErrMissingProfile = errors.New("token carries no profile id")

// Claims are the JWT claims of an access token.
type Claims struct {
	ProfileID int64 `json:"profile_id"`
	jwt.RegisteredClaims
}

// MintToken issues a signed token for profileID valid for ttl.
func MintToken(cfg config.AuthConfig, now time.Time, profileID int64, ttl time.Duration) (string, error) {
	if cfg.JWTSecret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	if profileID <= 0 {
		return "", fmt.Errorf("invalid profile id %d", profileID)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive")
	}

	claims := Claims{
		ProfileID: profileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   strconv.FormatInt(profileID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(cfg config.AuthConfig, tokenString string) (*Claims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	if claims.ProfileID <= 0 {
		return nil, ErrMissingProfile
	}

	return claims, nil
}

type contextKey string

const ctxProfileID contextKey = "profile_id"

// WithProfileID stores the authenticated profile id in ctx.
func WithProfileID(ctx context.Context, profileID int64) context.Context {
	return context.WithValue(ctx, ctxProfileID, profileID)
}

// ProfileIDFromContext returns the authenticated profile id.
func ProfileIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(ctxProfileID).(int64)
	return id, ok && id > 0
}
