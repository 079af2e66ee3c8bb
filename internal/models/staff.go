package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
)

// StaffRole represents the available roles for arranger staff.
type StaffRole string

const (
	RoleCoordinator StaffRole = "COORDINATOR"
	RoleMentor      StaffRole = "MENTOR"
)

// Staff represents an arranger employee stored in the staff table.
type Staff struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	FirstName    string         `db:"first_name" json:"first_name"`
	MiddleName   *string        `db:"middle_name" json:"middle_name,omitempty"`
	LastName     string         `db:"last_name" json:"last_name"`
	ArrangerID   string         `db:"arranger_id" json:"arranger_id"`
	Roles        pq.StringArray `db:"roles" json:"roles"`
	Active       bool           `db:"active" json:"active"`
	LastLogin    *time.Time     `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the staff member holds the given role.
func (s *Staff) HasRole(role StaffRole) bool {
	for _, r := range s.Roles {
		if StaffRole(r) == role {
			return true
		}
	}
	return false
}

// LoginRequest holds credentials for authenticating a staff member.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued token and staff info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Staff       StaffInfo `json:"staff"`
}

// StaffInfo describes the authenticated staff member in responses.
type StaffInfo struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Roles     []StaffRole `json:"roles"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	StaffID    string      `json:"staff_id"`
	ArrangerID string      `json:"arranger_id"`
	Roles      []StaffRole `json:"roles"`
	Email      string      `json:"email"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims include the given role.
func (c *JWTClaims) HasRole(role StaffRole) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
