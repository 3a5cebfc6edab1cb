package utils // package utils provides helper functions for token creation and verification

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and presented
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims carries the identity encoded in an access token: the username
// as subject, the numeric user id and the admin flag.
type Claims struct {
	Username string
	UserID   uint64
	IsAdmin  bool
}

// ErrInvalidToken is returned by ParseAccessToken for any token that
// fails signature, expiry or claim-shape validation.
var ErrInvalidToken = errors.New("invalid token")

// SigningMethod resolves the configured HMAC algorithm name.  Only the
// HS256/HS384/HS512 family is accepted; anything else is an error so a
// typo in JWT_ALGORITHM cannot silently downgrade signing.
func SigningMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("unsupported JWT algorithm %q", alg)
}

// NewAccessToken builds and signs a JWT for a user.  The claim set
// matches what the middleware expects: sub carries the username, user_id
// the numeric id, is_admin the role flag, plus exp and iat.
func NewAccessToken(secret, alg string, c Claims, ttlMin int) (AccessToken, error) {
	method, err := SigningMethod(alg)
	if err != nil {
		return AccessToken{}, err
	}
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":      c.Username,
		"user_id":  c.UserID,
		"is_admin": c.IsAdmin,
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(method, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates a raw JWT and extracts its identity claims.
// Tokens signed with a non-HMAC method are rejected regardless of the
// configured algorithm.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	var c Claims
	if sub, ok := mc["sub"].(string); ok {
		c.Username = sub
	}
	// JSON numbers decode as float64.
	uid, ok := mc["user_id"].(float64)
	if !ok || c.Username == "" {
		return Claims{}, ErrInvalidToken
	}
	c.UserID = uint64(uid)
	if adm, ok := mc["is_admin"].(bool); ok {
		c.IsAdmin = adm
	}
	return c, nil
}
