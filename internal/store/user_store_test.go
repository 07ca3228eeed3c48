package store

import (
	"context"
	"testing"

	"shortly-platform/internal/model"
	"shortly-platform/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_EmailIsUniqueAndCaseInsensitive(t *testing.T) {
	s := NewUserStore(testutil.NewTestDB(t))
	ctx := context.Background()

	u := &model.User{Name: "Ada", Email: "Ada@Example.com", PasswordHash: "x"}
	require.NoError(t, s.Create(ctx, u))

	found, err := s.FindByEmail(ctx, "ada@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	err = s.Create(ctx, &model.User{Name: "Other", Email: "ada@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestUserStore_UpdatePasswordHash(t *testing.T) {
	s := NewUserStore(testutil.NewTestDB(t))
	ctx := context.Background()

	u := &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "old"}
	require.NoError(t, s.Create(ctx, u))
	require.NoError(t, s.UpdatePasswordHash(ctx, u.ID, "new"))

	found, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", found.PasswordHash)

	assert.ErrorIs(t, s.UpdatePasswordHash(ctx, 999, "x"), ErrNotFound)
}
