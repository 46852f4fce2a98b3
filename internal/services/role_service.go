package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/shelfwise/auth-backend/internal/models"
	"github.com/shelfwise/auth-backend/internal/store"
)

var (
	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleExists      = errors.New("role already exists")
	ErrRoleNotAllowed  = errors.New("only predefined roles can be created")
	ErrAlreadyAssigned = errors.New("user already has this role")
	ErrNotAssigned     = errors.New("user does not have this role")
)

// RoleService manages the fixed role catalog and per-user role assignment.
// Role names are compared case-insensitively at creation and assignment
// time; the stored display case is what ends up in token claims.
type RoleService struct {
	store store.Store
}

func NewRoleService(st store.Store) *RoleService {
	return &RoleService{store: st}
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := s.store.FindRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

// Create adds a role from the closed catalog. The name is checked
// case-insensitively against the predefined set but stored with the caller's
// casing for display.
func (s *RoleService) Create(ctx context.Context, name string) (*models.Role, error) {
	allowed := models.AllowedRoleNames()
	if _, ok := allowed[models.NormalizeRoleName(name)]; !ok {
		return nil, ErrRoleNotAllowed
	}

	role := &models.Role{Name: name}
	if err := s.store.CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrRoleExists
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	slog.Info("role created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, id uuid.UUID, newName string) (*models.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	role.Name = newName
	if err := s.store.UpdateRole(ctx, role); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrRoleNotFound
		case errors.Is(err, store.ErrDuplicate):
			return nil, ErrRoleExists
		}
		return nil, err
	}
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	slog.Info("role deleted", "role_id", id)
	return nil
}

func (s *RoleService) RolesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.RoleNames(), nil
}

func (s *RoleService) Assign(ctx context.Context, userID uuid.UUID, roleName string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	role, err := s.findRole(ctx, roleName)
	if err != nil {
		return err
	}

	if hasRole(user, role.ID) {
		return ErrAlreadyAssigned
	}
	if err := s.store.AssignRole(ctx, user, role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	slog.Info("role assigned", "user_id", userID, "role", role.Name)
	return nil
}

func (s *RoleService) Remove(ctx context.Context, userID uuid.UUID, roleName string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	role, err := s.findRole(ctx, roleName)
	if err != nil {
		return err
	}

	if !hasRole(user, role.ID) {
		return ErrNotAssigned
	}
	if err := s.store.RemoveRole(ctx, user, role); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}

	slog.Info("role removed", "user_id", userID, "role", role.Name)
	return nil
}

func (s *RoleService) IsInRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return false, err
	}
	role, err := s.findRole(ctx, roleName)
	if err != nil {
		return false, err
	}
	return hasRole(user, role.ID), nil
}

func (s *RoleService) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *RoleService) findRole(ctx context.Context, roleName string) (*models.Role, error) {
	role, err := s.store.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

func hasRole(user *models.User, roleID uuid.UUID) bool {
	for _, r := range user.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}
