package domain

import "time"

// UserRole represents the role of a user account
type UserRole string

const (
	UserRoleOrganizer UserRole = "organizer"
	UserRoleAdmin     UserRole = "admin"
)

// User represents a user account. Only the role matters to this service; the
// recompute sweep iterates every user with the organizer role.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
