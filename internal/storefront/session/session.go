// Package session supplies the signed-in identity to the request gateway. The
// gateway never looks a session up on its own; it is handed an Accessor.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role of a signed-in user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMarket   Role = "market"
	RoleAdmin    Role = "admin"
)

// User is the identity carried by a session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// Session is an opaque bearer credential plus the user it belongs to.
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time // zero when the token carries no expiry
}

// Accessor exposes the current session, if any.
type Accessor interface {
	GetSession() (*Session, bool)
}

// AccessorFunc adapts a function to the Accessor interface.
type AccessorFunc func() (*Session, bool)

func (f AccessorFunc) GetSession() (*Session, bool) {
	return f()
}

// Static returns an Accessor that always yields s. A nil s means signed out.
func Static(s *Session) Accessor {
	return AccessorFunc(func() (*Session, bool) {
		if s == nil || s.Token == "" {
			return nil, false
		}
		return s, true
	})
}

// None is an Accessor with no session.
var None Accessor = Static(nil)

// TokenSource yields a stored bearer token, typically from the CLI config file.
type TokenSource interface {
	GetToken() string
}

// TokenAccessor derives a session from a stored bearer token. Claims are read
// without verifying the signature; the backend is the one that verifies.
type TokenAccessor struct {
	src TokenSource
	now func() time.Time
}

// NewTokenAccessor returns an Accessor reading tokens from src.
func NewTokenAccessor(src TokenSource) *TokenAccessor {
	return &TokenAccessor{src: src, now: time.Now}
}

// GetSession returns no session when the token is empty or expired. Tokens
// that are not JWTs are passed through with an empty user.
func (a *TokenAccessor) GetSession() (*Session, bool) {
	if a == nil || a.src == nil {
		return nil, false
	}
	token := strings.TrimSpace(a.src.GetToken())
	if token == "" {
		return nil, false
	}
	s := &Session{Token: token}
	user, exp, err := ParseClaims(token)
	if err != nil {
		return s, true
	}
	s.User = user
	s.ExpiresAt = exp
	if !exp.IsZero() && !a.now().Before(exp) {
		return nil, false
	}
	return s, true
}

// Claims is the JWT payload exchanged with the backend.
type Claims struct {
	Role  Role   `json:"role"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the user and expiry from a JWT without verification.
func ParseClaims(token string) (User, time.Time, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return User{}, time.Time{}, err
	}
	return claims.user(), claims.expiry(), nil
}

// SignToken mints an HS256 token for user valid for ttl.
func SignToken(user User, key []byte, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Role:  user.Role,
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ErrInvalidToken is returned by VerifyToken for malformed, forged or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// VerifyToken checks an HS256 token signed with key and returns its user.
func VerifyToken(token string, key []byte) (User, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return User{}, errors.Join(ErrInvalidToken, err)
	}
	return claims.user(), nil
}

func (c *Claims) user() User {
	return User{ID: c.Subject, Name: c.Name, Email: c.Email, Role: c.Role}
}

func (c *Claims) expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
