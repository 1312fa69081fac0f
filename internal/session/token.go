package session

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the part of the access token payload the client reads. The
// signature is never checked here; only the backend can do that.
type Claims struct {
	jwt.RegisteredClaims
	UserID int    `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

// ParseClaims decodes the payload segment of token without verifying it.
// The header and signature segments must be present but are not read.
func ParseClaims(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: token contains %d segments", jwt.ErrTokenMalformed, len(parts))
	}
	payload, err := jwt.NewParser(jwt.WithPaddingAllowed()).DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", jwt.ErrTokenMalformed, err)
	}
	claims := &Claims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", jwt.ErrTokenMalformed, err)
	}
	return claims, nil
}

// TokenValid reports whether token is well formed and expires after now.
// Malformed tokens are simply invalid.
func TokenValid(token string, now time.Time) bool {
	claims, err := ParseClaims(token)
	if err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Unix() > now.Unix()
}

// subjectID returns the numeric user id carried by the token, if any.
func (c *Claims) subjectID() int {
	if c.UserID != 0 {
		return c.UserID
	}
	if id, err := strconv.Atoi(c.Subject); err == nil {
		return id
	}
	return 0
}
