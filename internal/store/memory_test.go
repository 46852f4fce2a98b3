package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/auth-backend/internal/models"
)

func TestMemoryUsernameLookupIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.CreateUser(ctx, &models.User{Username: "Alice"}))

	u, err := s.FindByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Username)

	err = s.CreateUser(ctx, &models.User{Username: "ALICE"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUpdateRefreshSlot_CAS(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	user := &models.User{Username: "alice"}
	require.NoError(t, s.CreateUser(ctx, user))

	// Two callers load the same version; only the first write wins.
	first, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	second, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)

	hashA, hashB := "aa", "bb"
	require.NoError(t, s.UpdateRefreshSlot(ctx, first, &hashA, time.Now().Add(time.Hour)))
	err = s.UpdateRefreshSlot(ctx, second, &hashB, time.Now().Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshTokenHash)
	assert.Equal(t, "aa", *stored.RefreshTokenHash)
}

func TestMemoryFindByRefreshHash(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	user := &models.User{Username: "alice"}
	require.NoError(t, s.CreateUser(ctx, user))

	hash := "deadbeef"
	require.NoError(t, s.UpdateRefreshSlot(ctx, user, &hash, time.Now().Add(time.Hour)))

	found, err := s.FindByRefreshHash(ctx, "deadbeef")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = s.FindByRefreshHash(ctx, "cafebabe")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRoleAssignment(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	user := &models.User{Username: "alice"}
	require.NoError(t, s.CreateUser(ctx, user))
	role := &models.Role{Name: "Admin"}
	require.NoError(t, s.CreateRole(ctx, role))

	require.NoError(t, s.AssignRole(ctx, user, role))
	require.NoError(t, s.AssignRole(ctx, user, role)) // second assign is a no-op

	stored, err := s.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Roles, 1)

	require.NoError(t, s.RemoveRole(ctx, user, role))
	stored, err = s.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Roles)
}
