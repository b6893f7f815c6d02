package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's permission level within a retailer
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	RetailerID   uuid.UUID `json:"retailer_id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"` // Not serialized
	CreatedAt    time.Time `json:"created_at"`
}

// CanViewAnalytics reports whether the role may read retailer analytics
func (r Role) CanViewAnalytics() bool {
	return r == RoleAdmin || r == RoleStaff
}
