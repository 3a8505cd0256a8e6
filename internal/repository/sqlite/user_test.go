package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/altarie/internal/apperror"
	"github.com/sakif/altarie/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFindByEmail_ReturnsSeededAdminWithHash(t *testing.T) {
	db, _ := newTestDB(t)

	u, err := db.Users().FindByEmail(context.Background(), testAdmin.Email)
	require.NoError(t, err)
	assert.Equal(t, testAdmin.Name, u.Name)
	assert.Equal(t, auth.HashPassword(testAdmin.Password, ""), u.PasswordHash)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestUserFindByEmail_Unknown(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := db.Users().FindByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUserCreate_WithoutPassword(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	u, err := db.Users().Create(ctx, "Jane", "jane@example.com")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.False(t, u.HasPassword())

	stored, err := db.Users().FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.PasswordHash)
}

func TestUserCreate_DuplicateEmailConflicts(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := db.Users().Create(context.Background(), "Again", testAdmin.Email)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestUserFind_OmitsPasswordHash(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	created, err := db.Users().CreateWithPassword(ctx, "Sam", "sam@example.com", "hash")
	require.NoError(t, err)
	assert.Empty(t, created.PasswordHash)

	found, err := db.Users().Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sam", found.Name)
	assert.Empty(t, found.PasswordHash)

	_, err = db.Users().Find(ctx, 9999)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUserAllAndCount(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.Users().Create(ctx, "Second", "second@example.com")
	require.NoError(t, err)

	all, err := db.Users().All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second@example.com", all[0].Email, "newest first")
	for _, u := range all {
		assert.Empty(t, u.PasswordHash)
	}

	n, err := db.Users().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
