package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/auth-backend/internal/models"
	"github.com/shelfwise/auth-backend/internal/store"
)

func newRoleFixture(t *testing.T) (*RoleService, *models.User) {
	t.Helper()
	st := store.NewMemory()
	authSvc, _ := newAuthService(st, time.Minute, time.Hour)
	user, err := authSvc.Register(context.Background(), "alice", "password123", "alice@example.com")
	require.NoError(t, err)
	return NewRoleService(st), user
}

func TestCreateRole_OnlyPredefinedNames(t *testing.T) {
	roles, _ := newRoleFixture(t)
	ctx := context.Background()

	created, err := roles.Create(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", created.Name)

	_, err = roles.Create(ctx, "superuser")
	assert.ErrorIs(t, err, ErrRoleNotAllowed)

	// Same catalog entry, different case.
	_, err = roles.Create(ctx, "ADMIN")
	assert.ErrorIs(t, err, ErrRoleExists)
}

func TestRoleCatalogCRUD(t *testing.T) {
	roles, _ := newRoleFixture(t)
	ctx := context.Background()

	created, err := roles.Create(ctx, "Manager")
	require.NoError(t, err)

	got, err := roles.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Manager", got.Name)

	updated, err := roles.Update(ctx, created.ID, "MANAGER")
	require.NoError(t, err)
	assert.Equal(t, "MANAGER", updated.Name)

	require.NoError(t, roles.Delete(ctx, created.ID))
	_, err = roles.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)

	err = roles.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestAssignAndRemoveRole(t *testing.T) {
	roles, user := newRoleFixture(t)
	ctx := context.Background()

	_, err := roles.Create(ctx, "Artist")
	require.NoError(t, err)

	// Assignment matches the catalog case-insensitively.
	require.NoError(t, roles.Assign(ctx, user.ID, "artist"))
	err = roles.Assign(ctx, user.ID, "ARTIST")
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	inRole, err := roles.IsInRole(ctx, user.ID, "Artist")
	require.NoError(t, err)
	assert.True(t, inRole)

	names, err := roles.RolesForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Artist"}, names)

	require.NoError(t, roles.Remove(ctx, user.ID, "Artist"))
	err = roles.Remove(ctx, user.ID, "Artist")
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestRoleOps_UnknownUserOrRole(t *testing.T) {
	roles, user := newRoleFixture(t)
	ctx := context.Background()

	err := roles.Assign(ctx, uuid.New(), "Admin")
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = roles.Assign(ctx, user.ID, "Admin")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	_, err = roles.IsInRole(ctx, user.ID, "Admin")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
