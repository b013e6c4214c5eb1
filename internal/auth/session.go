package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token
const SessionCookie = "jwt"

// SessionIssuer signs session tokens for logged in users.
// Tokens carry the claims "uid" and "role" plus iat and exp.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionIssuer creates an issuer signing with HS256
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for the user and its expiry
func (s *SessionIssuer) Issue(user *models.User) (string, time.Time, error) {
	if user == nil || user.ID == 0 {
		return "", time.Time{}, errors.New("cannot issue a session for an unsaved user")
	}
	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"uid":  strconv.FormatUint(uint64(user.ID), 10),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expires, nil
}

// Claims are the fields read back from session and client tokens
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Scope  string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken validates the signature and expiry of a token signed with secret
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no uid claim")
	}
	return claims, nil
}

// UserIDValue converts the uid claim into a user primary key
func (c *Claims) UserIDValue() (uint, error) {
	id, err := strconv.ParseUint(c.UserID, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid uid claim %q", c.UserID)
	}
	return uint(id), nil
}

// IssuedAtTime returns the iat claim or the zero time
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}
