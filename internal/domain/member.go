package domain

import "time"

// Role represents a member's role in the organization.
type Role string

const (
	RoleMember Role = "member"
	RoleLeader Role = "leader"
	RoleAdmin  Role = "admin"
)

// IsStaff returns true for roles allowed to manage events and registrations.
func (r Role) IsStaff() bool {
	return r == RoleLeader || r == RoleAdmin
}

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleLeader, RoleAdmin:
		return true
	default:
		return false
	}
}

// Member represents a registered member of the organization.
// Points and Level are mutated only through the points ledger; the
// attended-event and completed-task lists are derived from registrations
// and tasks rather than stored on the member.
type Member struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	Token     string
	Points    int
	Level     int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Badge represents an earnable badge in the catalog.
type Badge struct {
	ID          string
	Name        string
	Description string
	Points      int
	CreatedAt   time.Time
}

// MemberBadge records a badge granted to a member.
type MemberBadge struct {
	MemberID  string
	BadgeID   string
	AwardedAt time.Time
}
