// Package token implements the signed claim set codec, the token issuer, and
// the verifier state machine for access and refresh bearer tokens.
package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Type is the closed enumeration of token kinds carried in the "typ" claim.
type Type string

const (
	// TypeAccess marks a short-lived token presented on API requests.
	TypeAccess Type = "access"
	// TypeRefresh marks a long-lived token exchanged for a new pair.
	TypeRefresh Type = "refresh"
)

// Valid reports whether t is one of the two known token kinds.
func (t Type) Valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

// Claims is the decoded payload of a token. Access tokens additionally carry
// the subject's email and role, denormalized for stateless authorization.
type Claims struct {
	jwt.RegisteredClaims
	TokenType Type   `json:"typ"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}
