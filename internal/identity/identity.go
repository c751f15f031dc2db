// Package identity resolves a caller's bearer credential to a
// principal identifier, returning the anonymous principal when the
// credential is absent or unparseable.
package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the resolved caller of an HTTP request.
type Principal struct {
	UserID    int64
	Anonymous bool
	// Elevated marks the reserved "admin" capability. Only Issue with
	// elevated=true sets it, and no route calls Issue. handleRegister
	// (registering another user) and Cancel's authorization check read
	// it; BatchRegister does not.
	Elevated bool
}

// Anon is the anonymous principal returned when no credential is
// present.
var Anon = Principal{Anonymous: true}

var (
	ErrInvalidToken = errors.New("identity: invalid token")
)

type claims struct {
	Elevated bool `json:"elevated"`
	jwt.RegisteredClaims
}

// Adapter verifies bearer tokens signed with a shared secret.
type Adapter struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewAdapter constructs an Adapter.
func NewAdapter(secret, issuer string, expiry time.Duration) *Adapter {
	return &Adapter{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

// Issue mints a bearer token for userID. Rotation and session
// management are handled by whatever issues the token; this adapter
// only signs and verifies.
func (a *Adapter) Issue(userID int64, elevated bool) (string, error) {
	now := time.Now()
	c := claims{
		Elevated: elevated,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   formatInt(userID),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(a.secret)
}

// Resolve maps a raw "Authorization: Bearer <token>" header value to a
// Principal. An absent or malformed header resolves to the anonymous
// principal rather than an error. It is the HTTP middleware's job to
// decide whether anonymous access is allowed for a given route.
func (a *Adapter) Resolve(authHeader string) Principal {
	token, ok := tokenFromHeader(authHeader)
	if !ok {
		return Anon
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Anon
	}

	c, ok := parsed.Claims.(*claims)
	if !ok {
		return Anon
	}

	userID, err := parseInt(c.Subject)
	if err != nil {
		return Anon
	}

	return Principal{UserID: userID, Elevated: c.Elevated}
}

func tokenFromHeader(authHeader string) (string, bool) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
