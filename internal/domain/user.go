package domain

import (
	"strings"
	"time"
)

// Role is the authorization role carried in access tokens
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleOperator  Role = "operator"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleOperator:
		return true
	}
	return false
}

// User is a registered account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Claims are the fields extracted from a validated access token
type Claims struct {
	UserID string
	Email  string
	Role   Role
}

// Validate validates user fields
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidCredentials
	}
	if !u.Role.IsValid() {
		return ErrInvalidCredentials
	}
	return nil
}
