package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/bookcart/internal/models"
)

// UserStore persists credentials. Users are never updated or deleted.
type UserStore struct {
	DB *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{DB: db}
}

// FindByEmail returns the user with exactly this email or ErrNotFound.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.DB.GetContext(ctx, &u, s.DB.Rebind(`
		SELECT id, email, password_hash, role
		FROM users
		WHERE email = ?
	`), email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Create inserts a user in one statement; an existing email yields ErrConflict.
func (s *UserStore) Create(ctx context.Context, email, passwordHash string, role models.Role) error {
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		INSERT INTO users (email, password_hash, role)
		VALUES (?, ?, ?)
		ON CONFLICT (email) DO NOTHING
	`), email, passwordHash, string(role))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
