package service

import (
	"context"
	"errors"
	"time"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/user"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// ErrInvalidCredentials is returned for any login failure. Unknown username
// and wrong password are indistinguishable on purpose.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService issues tokens for staff accounts
type AuthService struct {
	store  store.Store
	log    logger.Logger
	secret string
	ttl    time.Duration
}

// NewAuthService creates an AuthService
func NewAuthService(st store.Store, log logger.Logger, secret string, ttl time.Duration) *AuthService {
	return &AuthService{store: st, log: log, secret: secret, ttl: ttl}
}

// Login verifies credentials and returns a signed token with the account
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !u.Active || !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.secret, u.ID, u.Username, u.Role, s.ttl)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("user logged in", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return token, u, nil
}

// Register creates a staff account with a hashed password
func (s *AuthService) Register(ctx context.Context, username, password string, role auth.Role) (*user.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := user.NewUser(username, hash, role)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", saved.ID, "username", saved.Username, "role", saved.Role)
	return saved, nil
}
