package user

import "time"

// Role values mirror the users.role column; SUPER_ADMIN implies ADMIN wherever
// a role check happens.
const (
	RoleUser       = "USER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusTrial     = "TRIAL"
)

type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"` // never expose hash in JSON
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	SubscriptionPlan *string    `json:"subscriptionPlan,omitempty"`
	SubscriptionEnds *time.Time `json:"subscriptionEnds,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Projection is the shape handlers return to clients.
type Projection struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	SubscriptionPlan *string    `json:"subscriptionPlan,omitempty"`
	SubscriptionEnds *time.Time `json:"subscriptionEnds,omitempty"`
}

func (u User) Projection() Projection {
	return Projection{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		Status:           u.Status,
		SubscriptionPlan: u.SubscriptionPlan,
		SubscriptionEnds: u.SubscriptionEnds,
	}
}

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusTrial:
		return true
	default:
		return false
	}
}

// IsAdmin reports whether the role grants admin-level access.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
