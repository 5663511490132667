package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two token families. Each kind is signed with its
// own secret, so one can never be accepted where the other is expected.
type Kind string

// Token kinds
const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Identity is the closed payload schema embedded in every token. It is the
// verified claim produced by any sign-in path (Google, phone/password, OTP)
// and is never persisted by the token service itself.
type Identity struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Claims is the JWT claims structure for both token kinds
type Claims struct {
	Identity Identity `json:"payload"`
	jwt.RegisteredClaims
}
