package user

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	DefaultCurrency string  `json:"default_currency" validate:"omitempty,len=3,uppercase"`
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	Username        *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	DefaultCurrency *string `json:"default_currency,omitempty" validate:"omitempty,len=3,uppercase"`
}

// UserResponse represents the response for a single user
type UserResponse struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	AvatarURL       *string `json:"avatar_url,omitempty"`
	DefaultCurrency string  `json:"default_currency"`
	CreatedAt       string  `json:"created_at"`
}

// ToResponse converts a User model to a UserResponse DTO
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		AvatarURL:       u.AvatarURL,
		DefaultCurrency: u.DefaultCurrency,
		CreatedAt:       u.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
