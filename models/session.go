package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of the signed session cookie. It binds the
// browser to a console and carries the backend token so a console evicted
// from memory can be restored.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Token     string `json:"tok,omitempty"`
	jwt.RegisteredClaims
}
