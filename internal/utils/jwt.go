package utils // package utils provides helper functions for session tokens and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// ErrInvalidToken is returned for any session token that fails decoding,
// signature, algorithm or expiry checks.  Callers never learn which check
// failed.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the claims carried by a session token.  The subject
// holds the decimal user id; Role holds the user's role at issue time.
type SessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// SessionToken is a signed JWT together with its expiry.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewSessionToken builds and signs an HS256 JWT for a user.  The token
// embeds the user id as subject, the role, and issued-at/expiry times.
func NewSessionToken(secret string, userID uint64, role string, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies raw and returns the user id and role it
// carries.  Only HMAC-signed tokens with a valid expiry are accepted.
func ParseSessionToken(secret, raw string) (uint64, string, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, "", ErrInvalidToken
	}
	return id, claims.Role, nil
}
