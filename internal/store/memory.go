package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/auth-backend/internal/models"
)

// Memory is an in-process Store used by tests and local development. It
// honors the same TokenVersion compare-and-swap contract as the Postgres
// adapter.
type Memory struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	roles map[uuid.UUID]*models.Role
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[uuid.UUID]*models.User),
		roles: make(map[uuid.UUID]*models.Role),
	}
}

func (s *Memory) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.NormalizedUsername = models.NormalizeUsername(user.Username)
	for _, u := range s.users {
		if u.NormalizedUsername == user.NormalizedUsername {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *Memory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := models.NormalizeUsername(username)
	for _, u := range s.users {
		if u.NormalizedUsername == normalized {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Memory) FindByRefreshHash(_ context.Context, hash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.RefreshTokenHash != nil && *u.RefreshTokenHash == hash {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) UpdateRefreshSlot(_ context.Context, user *models.User, hash *string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.TokenVersion != user.TokenVersion {
		return ErrConflict
	}

	stored.RefreshTokenHash = copyHash(hash)
	stored.RefreshTokenExpiry = expiry
	stored.TokenVersion++

	user.RefreshTokenHash = copyHash(hash)
	user.RefreshTokenExpiry = expiry
	user.TokenVersion++
	return nil
}

func (s *Memory) CreateRole(_ context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role.NormalizedName = models.NormalizeRoleName(role.Name)
	for _, r := range s.roles {
		if r.NormalizedName == role.NormalizedName {
			return ErrDuplicate
		}
	}
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	s.roles[role.ID] = &models.Role{ID: role.ID, Name: role.Name, NormalizedName: role.NormalizedName}
	return nil
}

func (s *Memory) FindRoleByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *Memory) FindRoleByName(_ context.Context, name string) (*models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := models.NormalizeRoleName(name)
	for _, r := range s.roles {
		if r.NormalizedName == normalized {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) ListRoles(_ context.Context) ([]models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := make([]models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		roles = append(roles, *r)
	}
	return roles, nil
}

func (s *Memory) UpdateRole(_ context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.roles[role.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = role.Name
	stored.NormalizedName = models.NormalizeRoleName(role.Name)
	return nil
}

func (s *Memory) DeleteRole(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[id]; !ok {
		return ErrNotFound
	}
	delete(s.roles, id)
	for _, u := range s.users {
		kept := u.Roles[:0]
		for _, r := range u.Roles {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		u.Roles = kept
	}
	return nil
}

func (s *Memory) AssignRole(_ context.Context, user *models.User, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	for _, r := range stored.Roles {
		if r.ID == role.ID {
			return nil
		}
	}
	stored.Roles = append(stored.Roles, *role)
	user.Roles = append(user.Roles, *role)
	return nil
}

func (s *Memory) RemoveRole(_ context.Context, user *models.User, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	kept := stored.Roles[:0]
	for _, r := range stored.Roles {
		if r.ID != role.ID {
			kept = append(kept, r)
		}
	}
	stored.Roles = kept
	user.Roles = append([]models.Role(nil), kept...)
	return nil
}

func copyUser(u *models.User) *models.User {
	cp := *u
	cp.RefreshTokenHash = copyHash(u.RefreshTokenHash)
	cp.Roles = append([]models.Role(nil), u.Roles...)
	return &cp
}

func copyHash(hash *string) *string {
	if hash == nil {
		return nil
	}
	cp := *hash
	return &cp
}
