package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"auth-api/internal/domain/models"
	"auth-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func testUser(id, username, email string) models.User {
	return models.User{
		ID:             id,
		Username:       username,
		Email:          email,
		PassHash:       []byte("hash-" + id),
		AccountCreated: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGetUser(t *testing.T) {
	s := openTempStorage(t)
	ctx := context.Background()

	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	in := testUser("u-1", "al", "al@x.com")
	in.Name = "Al"
	in.Location = "Riga"
	in.Picture = "https://example.com/al.png"
	in.DOB = &dob

	require.NoError(t, s.SaveUser(ctx, in))

	byID, err := s.UserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, in, byID)

	byEmail, err := s.UserByEmail(ctx, "al@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byEmail.ID)

	byName, err := s.UserByUsername(ctx, "al")
	require.NoError(t, err)
	assert.Equal(t, "u-1", byName.ID)
}

func TestSaveUser_Duplicate(t *testing.T) {
	s := openTempStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveUser(ctx, testUser("u-1", "al", "al@x.com")))

	err := s.SaveUser(ctx, testUser("u-2", "bob", "al@x.com"))
	assert.ErrorIs(t, err, storage.ErrUserExists)

	err = s.SaveUser(ctx, testUser("u-3", "al", "other@x.com"))
	assert.ErrorIs(t, err, storage.ErrUserExists)
}

func TestUserNotFound(t *testing.T) {
	s := openTempStorage(t)
	ctx := context.Background()

	_, err := s.UserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.UserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.UserByUsername(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUpdateUser_KeepsImmutableFields(t *testing.T) {
	s := openTempStorage(t)
	ctx := context.Background()

	in := testUser("u-1", "al", "al@x.com")
	in.ArticlesPublished = 3
	require.NoError(t, s.SaveUser(ctx, in))

	upd := in
	upd.Name = "Albert"
	upd.PassHash = []byte("new-hash")
	upd.AccountCreated = time.Now().UTC()
	upd.ArticlesPublished = 0
	require.NoError(t, s.UpdateUser(ctx, upd))

	got, err := s.UserByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Albert", got.Name)
	assert.Equal(t, []byte("new-hash"), got.PassHash)
	assert.Equal(t, in.AccountCreated, got.AccountCreated)
	assert.Equal(t, 3, got.ArticlesPublished)
	assert.Nil(t, got.DOB)
}

func TestUpdateUser_NotFound(t *testing.T) {
	s := openTempStorage(t)

	err := s.UpdateUser(context.Background(), testUser("missing", "x", "x@x.com"))
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
