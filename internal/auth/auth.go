// Package auth issues and verifies the bearer tokens used by the API.
//
// An Authenticator is built once at startup and handed to the router and to
// the auth service; nothing in this package keeps global state.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds. Refresh tokens are rejected by the request middleware.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var ErrInvalidToken = errors.New("token invalido ou expirado")

// Claims are embedded in every token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// Authenticator signs and parses HS256 tokens.
type Authenticator struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthenticator(secret string, accessTTL, refreshTTL time.Duration) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL is the lifetime of access tokens.
func (a *Authenticator) AccessTTL() time.Duration { return a.accessTTL }

// IssuePair returns a fresh access and refresh token for the user.
func (a *Authenticator) IssuePair(userID uuid.UUID, username string) (access, refresh string, err error) {
	access, err = a.issue(userID, username, KindAccess, a.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = a.issue(userID, username, KindRefresh, a.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (a *Authenticator) issue(userID uuid.UUID, username, kind string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		UserID:   userID.String(),
		Username: username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, expiry and kind of a token.
func (a *Authenticator) Parse(tokenStr, kind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
