package utils // package utils provides helper functions for token creation, ids and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidScopeToken is returned by ParseScopeToken for any token that is
// malformed, expired, signed with another key or missing its scope claims.
var ErrInvalidScopeToken = errors.New("invalid scope token")

// ScopeToken is a signed JWT identifying a device scope and one of its tabs.
// Token holds the serialized JWT string and Exp its expiration.
type ScopeToken struct {
	Token    string
	DeviceID string
	TabID    string
	Exp      time.Time
}

// NewScopeToken builds and signs an HS256 JWT for a device/tab pair. The
// subject (sub) is the device id, the custom "tab" claim carries the tab id,
// followed by the standard expiration (exp) and issued at (iat) claims.
func NewScopeToken(secret, deviceID, tabID string, ttl time.Duration) (ScopeToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": deviceID,
		"tab": tabID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return ScopeToken{}, err
	}
	return ScopeToken{Token: signed, DeviceID: deviceID, TabID: tabID, Exp: exp}, nil
}

// ParseScopeToken validates raw against secret and returns the device and
// tab ids it carries.
func ParseScopeToken(secret, raw string) (deviceID, tabID string, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Only accept HMAC signatures; anything else is rejected.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidScopeToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", ErrInvalidScopeToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidScopeToken
	}
	deviceID, _ = claims["sub"].(string)
	tabID, _ = claims["tab"].(string)
	if deviceID == "" || tabID == "" {
		return "", "", ErrInvalidScopeToken
	}
	return deviceID, tabID, nil
}
