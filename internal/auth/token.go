package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TigerArchive/TigerArchive/internal/rbac"
)

const tokenIssuer = "tigerarchive"

// Claims are the bearer token claims, the subject is the user id.
type Claims struct {
	Role      rbac.Role `json:"role"`
	Email     string    `json:"email"`
	FirstName string    `json:"given_name,omitempty"`
	LastName  string    `json:"family_name,omitempty"`
	ClassYear string    `json:"class_year,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer creates and validates HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer signing with secret. Tokens live for ttl,
// the same window as a cookie session.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for identity and returns it with its expiry.
func (t *TokenIssuer) Issue(identity *rbac.Identity) (string, time.Time, error) {
	if !identity.Valid() {
		return "", time.Time{}, rbac.ErrUnauthenticated
	}

	now := t.now()
	expires := now.Add(t.ttl)

	claims := &Claims{
		Role:      identity.Role,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		ClassYear: identity.ClassYear,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(identity.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expires, nil
}

// Parse validates token and returns the identity it carries.
func (t *TokenIssuer) Parse(token string) (*rbac.Identity, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %w", ErrInvalidToken, err)
	}

	identity := &rbac.Identity{
		UserID:    id,
		Role:      claims.Role,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		ClassYear: claims.ClassYear,
	}

	if !identity.Valid() {
		return nil, ErrInvalidToken
	}

	return identity, nil
}

// RandomSecret returns a hex encoded 256 bit secret for processes started without one.
func RandomSecret() (string, error) {
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random secret: %w", err)
	}

	return hex.EncodeToString(b), nil
}
