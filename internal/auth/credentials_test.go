package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"echochat/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func createDB(t *testing.T) *gorm.DB {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

func TestRegisterAndVerify(t *testing.T) {
	db := createDB(t)
	creds := NewCredentialsWithCost(db, bcrypt.MinCost)
	ctx := context.Background()

	userId, err := creds.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotZero(t, userId)

	user, err := database.GetUser(ctx, db, userId)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, "pw1", user.PasswordHash)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2"))

	got, err := creds.Verify(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, userId, got)

	_, err = creds.Verify(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailure)

	_, err = creds.Verify(ctx, "bob", "pw1")
	assert.ErrorIs(t, err, ErrAuthFailure)
}

func TestRegisterDuplicate(t *testing.T) {
	db := createDB(t)
	creds := NewCredentialsWithCost(db, bcrypt.MinCost)
	ctx := context.Background()

	_, err := creds.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = creds.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// The first registration still logs in.
	_, err = creds.Verify(ctx, "alice", "pw1")
	assert.NoError(t, err)
}

func TestRegisterInvalid(t *testing.T) {
	db := createDB(t)
	creds := NewCredentialsWithCost(db, bcrypt.MinCost)
	ctx := context.Background()

	_, err := creds.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = creds.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = creds.Register(ctx, "alice", strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestSaltedHashes(t *testing.T) {
	db := createDB(t)
	creds := NewCredentialsWithCost(db, bcrypt.MinCost)
	ctx := context.Background()

	aliceId, err := creds.Register(ctx, "alice", "same")
	require.NoError(t, err)
	bobId, err := creds.Register(ctx, "bob", "same")
	require.NoError(t, err)

	alice, err := database.GetUser(ctx, db, aliceId)
	require.NoError(t, err)
	bob, err := database.GetUser(ctx, db, bobId)
	require.NoError(t, err)

	assert.NotEqual(t, alice.PasswordHash, bob.PasswordHash)
}

func TestChangePassword(t *testing.T) {
	db := createDB(t)
	creds := NewCredentialsWithCost(db, bcrypt.MinCost)
	ctx := context.Background()

	userId, err := creds.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	assert.ErrorIs(t, creds.ChangePassword(ctx, userId, "wrong", "pw2"), ErrAuthFailure)
	assert.ErrorIs(t, creds.ChangePassword(ctx, userId, "pw1", ""), ErrMissingCredential)

	require.NoError(t, creds.ChangePassword(ctx, userId, "pw1", "pw2"))

	_, err = creds.Verify(ctx, "alice", "pw1")
	assert.ErrorIs(t, err, ErrAuthFailure)

	got, err := creds.Verify(ctx, "alice", "pw2")
	require.NoError(t, err)
	assert.Equal(t, userId, got)
}
