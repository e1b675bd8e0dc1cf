// Package auth resolves bearer credentials to user ids and hashes passwords.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"webnova-quiz-service/internal/domain"
)

const issuer = "webnova-quiz-service"

// RevocationStore remembers token ids that were logged out before expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Claims carried by issued tokens. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	revoked RevocationStore
	now     func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, revoked RevocationStore) *TokenManager {
	return NewTokenManagerWithClock(secret, ttl, revoked, time.Now)
}

// NewTokenManagerWithClock allows deterministic expiry checks in tests.
func NewTokenManagerWithClock(secret string, ttl time.Duration, revoked RevocationStore, now func() time.Time) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, revoked: revoked, now: now}
}

func (m *TokenManager) Issue(_ context.Context, userID string) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) ResolveIdentity(ctx context.Context, credential string) (string, error) {
	claims, err := m.parse(credential)
	if err != nil {
		return "", err
	}
	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return "", domain.ErrUnauthorized
		}
	}
	return claims.Subject, nil
}

// Revoke blocks the token until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, credential string) error {
	claims, err := m.parse(credential)
	if err != nil {
		return err
	}
	if m.revoked == nil {
		return nil
	}
	return m.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (m *TokenManager) parse(credential string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
