package user

import (
	"database/sql"
	"time"

	"github.com/banmai/schoolgate/internal/token"
)

// Role is the closed set of account roles
type Role string

// Account roles
const (
	RoleStudent    Role = "STUDENT"
	RoleParent     Role = "PARENT"
	RoleTeacher    Role = "TEACHER"
	RoleHeadmaster Role = "HEADMASTER"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleParent, RoleTeacher, RoleHeadmaster:
		return true
	}
	return false
}

// User represents the users table
type User struct {
	ID             string         `db:"id" json:"id"`
	Email          string         `db:"email" json:"email"`
	Phone          string         `db:"phone" json:"phone"`
	DisplayName    string         `db:"display_name" json:"display_name"`
	PasswordDigest string         `db:"password_digest" json:"-"`
	Role           Role           `db:"role" json:"role"`
	IsVerified     bool           `db:"is_verified" json:"is_verified"`
	Employed       sql.NullBool   `db:"employed" json:"employed,omitempty"`
	GoogleUID      sql.NullString `db:"google_uid" json:"-"`
	LastLoggedOn   sql.NullTime   `db:"last_logged_on" json:"last_logged_on,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Identity returns the verified claim embedded into tokens for this user
func (u *User) Identity() token.Identity {
	return token.Identity{
		ID:          u.ID,
		Role:        string(u.Role),
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Phone:       u.Phone,
	}
}
