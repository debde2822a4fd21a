// Package token issues and validates the signed bearer tokens used by the
// API surface and the web session cookie.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuerName = "inkwell-api"
	audience   = "inkwell-client"
)

// Issuer signs and validates time-bounded identity assertions.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an Issuer with the given HMAC secret and token lifetime.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token issuer requires a signing secret")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token asserting the given user identity.
func (i *Issuer) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": issuerName,
		"aud": audience,
		"exp": now.Add(i.ttl).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Identify validates a token and returns the user identity it asserts.
// Expired and otherwise-invalid tokens both fail with an UNAUTHENTICATED
// error; callers must reject the request before touching any store.
func (i *Issuer) Identify(tokenString string) (uint, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, models.NewUnauthenticatedError("Token expired")
		}
		return 0, models.NewUnauthenticatedError("Invalid token")
	}
	if !tok.Valid {
		return 0, models.NewUnauthenticatedError("Invalid token")
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthenticatedError("Invalid token claims")
	}

	if iss, issOk := claims["iss"].(string); !issOk || iss != issuerName {
		return 0, models.NewUnauthenticatedError("Invalid token issuer")
	}
	if aud, audOk := claims["aud"].(string); !audOk || aud != audience {
		return 0, models.NewUnauthenticatedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthenticatedError("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, models.NewUnauthenticatedError("Invalid user ID in token")
	}

	return uint(userID), nil
}
