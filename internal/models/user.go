package models

import "time"

// Role is the closed set of staff roles. Role values are never free text;
// anything outside this set carries no capabilities.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleMember     Role = "member"
)

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Status is the account approval state. A pending account holds a role but
// is denied every capability until approved.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved
}

// User represents an authenticated staff member.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string    `gorm:"size:255;not null" json:"-"` // hashé, jamais en clair
	DisplayName string    `gorm:"size:255" json:"display_name"`
	Role        Role      `gorm:"size:50;not null" json:"role"`
	Status      Status    `gorm:"size:20;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
