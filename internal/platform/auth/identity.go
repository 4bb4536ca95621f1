// Package auth resolves the shopper identity from bearer JWTs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("auth secret is required")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// Identity is the authenticated shopper bound to a request.
type Identity struct {
	UserID int64
	// Token is the raw bearer token, forwarded to the store API.
	Token string
}

type identityKey struct{}

// WithIdentity binds id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity bound to ctx.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID > 0
}

// TokenFromContext returns the bearer token of the identity bound to ctx.
func TokenFromContext(ctx context.Context) (string, bool) {
	id, ok := FromContext(ctx)
	if !ok || id.Token == "" {
		return "", false
	}
	return id.Token, true
}

// Validator checks HS256 tokens signed with a shared secret.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator builds a validator. An empty issuer accepts any issuer.
func NewValidator(secret, issuer string) (*Validator, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Validator{secret: []byte(secret), issuer: issuer}, nil
}

// Validate parses tokenStr and returns the identity in its subject claim.
func (v *Validator) Validate(tokenStr string) (Identity, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("%w: subject must be a positive user id", ErrInvalidToken)
	}
	return Identity{UserID: userID, Token: tokenStr}, nil
}

// Issue mints a token for userID valid for ttl. Used by dev tooling and tests.
func (v *Validator) Issue(userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    v.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
