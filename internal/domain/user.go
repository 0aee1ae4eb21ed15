package domain

import "errors"

// Role is the campus role of an account holder.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// Caller is the authenticated identity making a request. Its AccountID is
// always the source of any tip it gives.
type Caller struct {
	AccountID int64
	Email     string
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
