// ABOUTME: Reads registered claims from a session token without verifying it
// ABOUTME: Used only for display; the backend remains the authority on validity

package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the display-relevant registered claims of a token
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes token as a JWT without checking its signature.
// ok is false when the token is not a JWT.
func ParseClaims(token string) (Claims, bool) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, false
	}

	c := Claims{Subject: rc.Subject}
	if rc.IssuedAt != nil {
		c.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, true
}
