package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/ragstore/internal/models"
)

func TestUserService_CreateNormalizesEmail(t *testing.T) {
	users := NewUserService(newFakeDB())

	err := users.Create(context.Background(), &models.User{Email: "  Dev@Example.COM ", PasswordHash: "hash"})
	require.NoError(t, err)

	got, err := users.GetByEmail(context.Background(), "DEV@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "dev@example.com", got.Email)
}

func TestUserService_CreateRejectsIncompletePayload(t *testing.T) {
	users := NewUserService(newFakeDB())

	assert.Error(t, users.Create(context.Background(), nil))
	assert.Error(t, users.Create(context.Background(), &models.User{Email: "dev@example.com"}))
	assert.Error(t, users.Create(context.Background(), &models.User{PasswordHash: "hash"}))
	assert.Error(t, users.Create(context.Background(), &models.User{Email: "   ", PasswordHash: "hash"}))
}
