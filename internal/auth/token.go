// Package auth issues and verifies the credentials the API hands out:
// short-lived HS256 access tokens and opaque refresh tokens. Only a SHA-256
// hash of a refresh token is ever stored; the raw value goes back to the
// client once and is never recoverable from the database.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mutemutemute/excursions/internal/domain"
)

// AccessToken is a signed JWT along with its expiry. The subject claim is
// the user ID and the role claim carries the account's role.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is the long-lived opaque token used to obtain new access
// tokens. Raw is returned to the client; the database stores Hash(Raw).
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// NewAccessToken builds and signs an HS256 JWT for the given actor.
func NewAccessToken(secret string, actor domain.Actor, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(actor.ID, 10),
		"role": string(actor.Role),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, fmt.Errorf("auth.NewAccessToken: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a token and returns
// the actor it was issued for. Any parse or claim failure yields an error;
// callers treat every failure the same way (reject the request).
func ParseAccessToken(secret, raw string) (domain.Actor, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return domain.Actor{}, fmt.Errorf("auth.ParseAccessToken: invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Actor{}, fmt.Errorf("auth.ParseAccessToken: invalid claims")
	}

	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return domain.Actor{}, fmt.Errorf("auth.ParseAccessToken: invalid subject")
	}
	role, _ := claims["role"].(string)
	if !domain.Role(role).Valid() {
		return domain.Actor{}, fmt.Errorf("auth.ParseAccessToken: invalid role")
	}
	return domain.Actor{ID: id, Role: domain.Role(role)}, nil
}

// NewRefreshToken returns an opaque token and its expiry. Two UUIDs give
// 256 bits of random material, which is plenty for an unguessable secret.
func NewRefreshToken(ttl time.Duration) RefreshToken {
	raw := uuid.NewString() + uuid.NewString()
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(ttl),
	}
}

// HashRefresh returns the hex-encoded SHA-256 digest of a raw refresh token.
func HashRefresh(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
