package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/user"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
)

// CreateUser implements store.UserStore
func (s *Store) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, role, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.Active, u.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, "failed to create user")
	}

	out := *u
	return &out, nil
}

// GetUserByUsername implements store.UserStore
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password_hash, role, active, created_at
		 FROM users WHERE lower(username) = lower($1)`, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &u, nil
}
