package dto

import "github.com/Outis2001/ayubo-cafe-sub003/internal/domain/user"

// LoginRequest carries staff credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the token and the authenticated account
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// NewLoginResponse builds a LoginResponse from a user and token
func NewLoginResponse(token string, u *user.User) LoginResponse {
	return LoginResponse{
		Token:    token,
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	}
}

// RegisterRequest creates a staff account
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=owner staff"`
}
