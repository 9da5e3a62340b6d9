package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/markdave123-py/ragstore/internal/core"
	"github.com/markdave123-py/ragstore/internal/models"
)

// UserService backs the signup/login handlers with account rows. Emails are
// normalized here so lookups never depend on the caller's casing.
type UserService struct {
	db core.DbClient
}

func NewUserService(db core.DbClient) *UserService {
	return &UserService{db: db}
}

// Create stores a new account. The handler hashes the password; only the
// hash ever reaches this layer.
func (s *UserService) Create(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is required")
	}
	u.Email = normalizeEmail(u.Email)
	if u.Email == "" || u.PasswordHash == "" {
		return fmt.Errorf("email and password are required")
	}
	if err := s.db.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByEmail returns the stored account, or nil when the email is unknown.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.db.GetUserByEmail(ctx, normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
