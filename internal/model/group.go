package model

import "time"

// Member roles within a family group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type FamilyGroup struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	InviteCode    string     `json:"invite_code,omitempty"`
	TempCode      *string    `json:"temp_invite_code,omitempty"`
	TempExpiresAt *time.Time `json:"temp_invite_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type GroupMember struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	UserID    int64     `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GroupWithRole is a group joined with the requesting user's role,
// as returned by the "my groups" listing.
type GroupWithRole struct {
	FamilyGroup
	Role string `json:"role"`
}

// MemberDetail is a membership row joined with user identity for
// the group-details response.
type MemberDetail struct {
	UserID   int64     `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
