// Package store defines the credential store contract and its adapters. The
// rest of the backend depends only on the Store interface; one concrete
// adapter exists per backing technology.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/auth-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrConflict  = errors.New("concurrent update conflict")
)

// Store is the persistence contract for credential records and the role
// catalog. Username lookups are case-insensitive. UpdateRefreshSlot is the
// sole mutation point for the refresh-token slot and must be atomic per
// record: two concurrent logins for the same user must never interleave
// partial writes of hash and expiry.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByRefreshHash(ctx context.Context, hash string) (*models.User, error)

	// UpdateRefreshSlot writes hash+expiry as one unit, guarded by the
	// record's TokenVersion. A lost race returns ErrConflict; on success the
	// in-memory record is updated to the new version.
	UpdateRefreshSlot(ctx context.Context, user *models.User, hash *string, expiry time.Time) error

	CreateRole(ctx context.Context, role *models.Role) error
	FindRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	UpdateRole(ctx context.Context, role *models.Role) error
	DeleteRole(ctx context.Context, id uuid.UUID) error

	AssignRole(ctx context.Context, user *models.User, role *models.Role) error
	RemoveRole(ctx context.Context, user *models.User, role *models.Role) error
}
