package group

import "github.com/tallyup/tallyup/internal/balance"

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=100"`
	Description     *string `json:"description,omitempty"`
	DefaultCurrency string  `json:"default_currency,omitempty" validate:"omitempty,len=3,uppercase"`
	IsTemporary     bool    `json:"is_temporary"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description     *string `json:"description,omitempty"`
	DefaultCurrency *string `json:"default_currency,omitempty" validate:"omitempty,len=3,uppercase"`
}

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest struct {
	UserID int64      `json:"user_id" validate:"required"`
	Role   MemberRole `json:"role" validate:"omitempty,oneof=ADMIN MEMBER"`
}

// UpdateMemberRequest represents the request to update a member's status or role
type UpdateMemberRequest struct {
	Status *MemberStatus `json:"status,omitempty" validate:"omitempty,oneof=INVITED JOINED"`
	Role   *MemberRole   `json:"role,omitempty" validate:"omitempty,oneof=ADMIN MEMBER"`
}

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name"`
	Description     *string           `json:"description,omitempty"`
	DefaultCurrency string            `json:"default_currency"`
	IsTemporary     bool              `json:"is_temporary"`
	CreatedAt       string            `json:"created_at"`
	Members         []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID       int64        `json:"id"`
	UserID   int64        `json:"user_id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Status   MemberStatus `json:"status"`
	Role     MemberRole   `json:"role"`
	JoinedAt string       `json:"joined_at"`
}

// MemberBalanceResponse is one member's net position against the requesting
// user. Positive amounts mean the member owes the requesting user.
type MemberBalanceResponse struct {
	UserID   int64           `json:"user_id"`
	Username string          `json:"username"`
	Balances []balance.Entry `json:"balances"`
	Settled  bool            `json:"settled"`
}

// GroupBalancesResponse represents the response for group balances
type GroupBalancesResponse struct {
	GroupID int64                    `json:"group_id"`
	UserID  int64                    `json:"user_id"`
	Total   []balance.Entry          `json:"total"`
	Members []*MemberBalanceResponse `json:"members"`
}

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:              g.ID,
		Name:            g.Name,
		Description:     g.Description,
		DefaultCurrency: g.DefaultCurrency,
		IsTemporary:     g.IsTemporary,
		CreatedAt:       g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Username: m.Username,
		Email:    m.Email,
		Status:   m.Status,
		Role:     m.Role,
		JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toMemberBalanceResponse(mb balance.MemberBalance) *MemberBalanceResponse {
	return &MemberBalanceResponse{
		UserID:   mb.UserID,
		Username: mb.Username,
		Balances: mb.Balance.SortedByMagnitude(),
		Settled:  mb.Balance.IsSettled(),
	}
}
