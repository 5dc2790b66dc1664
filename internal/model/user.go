package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Role is the closed set of account roles stored in users.role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole converts a raw role name into a Role.  Matching is
// case-insensitive and ignores surrounding whitespace; anything outside
// the enumerated set is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Column limits of the users table, in characters.
const (
	MaxUsernameLength = 64
	MaxEmailLength    = 255
)

// CheckAccountFields reports the first of username and email that does
// not fit its column.  Empty values are not checked.
func CheckAccountFields(username, email string) error {
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLength)
	}
	return nil
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User represents a row of the `users` table.
//
// Fields:
//
//	ID           – primary key identifier.
//	Username     – unique display name.
//	Email        – unique login address.
//	PasswordHash – bcrypt hash (users.hashed_password).
//	Role         – USER or ADMIN.
//	CreatedAt    – registration timestamp.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the identity resolved for a request from its session
// cookie.  A nil *Principal means the request is anonymous.
type Principal struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// PrincipalOf builds the request principal for a stored user.
func PrincipalOf(u User) *Principal {
	return &Principal{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
