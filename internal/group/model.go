package group

import "time"

// MemberStatus tracks the invitation lifecycle of a membership
type MemberStatus string

const (
	MemberStatusInvited MemberStatus = "INVITED"
	MemberStatusJoined  MemberStatus = "JOINED"
)

// MemberRole separates admins from regular members
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Group is a shared ledger of transactions between its members. The default
// currency is applied to transactions created without an explicit one.
type Group struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	DefaultCurrency string    `json:"default_currency"`
	IsTemporary     bool      `json:"is_temporary"`
	CreatedAt       time.Time `json:"created_at"`
}

// GroupMember ties a user to a group with their status and role
type GroupMember struct {
	ID       int64        `json:"id"`
	GroupID  int64        `json:"group_id"`
	UserID   int64        `json:"user_id"`
	Status   MemberStatus `json:"status"`
	Role     MemberRole   `json:"role"`
	JoinedAt time.Time    `json:"joined_at"`

	// Populated from JOIN
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
