package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleOrganizer UserRole = "organizer"
	RoleAdmin     UserRole = "admin"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Role         UserRole  `db:"role" json:"role"`
	Faculty      *string   `db:"faculty" json:"faculty,omitempty"`
	Active       bool      `db:"active" json:"active"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
