package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
)

var (
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyPassword = errors.New("password hash cannot be empty")
)

// User is a staff or owner account used to authenticate API calls
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates an active account with the given bcrypt hash
func NewUser(username, passwordHash string, role auth.Role) (*User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if passwordHash == "" {
		return nil, ErrEmptyPassword
	}

	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}
