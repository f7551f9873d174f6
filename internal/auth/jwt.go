// Package auth provides JWT issuance/validation, bcrypt password hashing,
// and the HTTP middleware that puts the authenticated user ID into the
// request context.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "gamereel"

	// tokenLifetime keeps users signed in for a month. There is no refresh
	// flow; after expiry the client logs in again.
	tokenLifetime = 30 * 24 * time.Hour
)

// TokenService signs and verifies the HS256 bearer tokens. The user ID rides
// in the "sub" claim.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret. The secret
// should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given user.
func (s *TokenService) Generate(userID int64) (string, error) {
	return s.GenerateWithDuration(userID, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry. Used by tests
// to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, returning the user ID it
// encodes. Pinning the accepted methods to HS256 blocks algorithm-confusion
// tokens.
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token has no usable subject")
	}
	return userID, nil
}
