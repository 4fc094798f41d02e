package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Token errors. Both wrap shared.ErrUnauthorized when returned from Verify.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims is the payload of an access token.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenIssuer creates an issuer for the given secret. The secret is read
// once at start-up and never changes for the life of the process.
func NewTokenIssuer(secret []byte, issuer string) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: token secret must not be empty")
	}
	return &TokenIssuer{secret: secret, issuer: issuer, now: time.Now}, nil
}

// WithClock returns a copy of the issuer reading time from now.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	clone := *t
	clone.now = now
	return &clone
}

// Issue signs a token binding userID that expires ttl from now.
func (t *TokenIssuer) Issue(userID string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns its claims. Every failure wraps
// shared.ErrUnauthorized; the wrapped cause is for logs only.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", shared.ErrUnauthorized, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, shared.ErrUnauthorized
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: %w: userId", shared.ErrUnauthorized, ErrMissingClaim)
	}
	return claims, nil
}
