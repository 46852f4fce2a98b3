package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelfwise/auth-backend/internal/models"
)

// Gorm is the Postgres-backed Store adapter.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) CreateUser(ctx context.Context, user *models.User) error {
	user.NormalizedUsername = models.NormalizeUsername(user.Username)
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Gorm) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("normalized_username = ?", models.NormalizeUsername(username)).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Gorm) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Gorm) FindByRefreshHash(ctx context.Context, hash string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("refresh_token_hash = ?", hash).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UpdateRefreshSlot writes the hash/expiry pair in a single conditional
// UPDATE keyed on token_version. RowsAffected == 0 means another login or
// refresh won the race.
func (s *Gorm) UpdateRefreshSlot(ctx context.Context, user *models.User, hash *string, expiry time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND token_version = ?", user.ID, user.TokenVersion).
		Updates(map[string]interface{}{
			"refresh_token_hash":   hash,
			"refresh_token_expiry": expiry,
			"token_version":        user.TokenVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}

	user.RefreshTokenHash = hash
	user.RefreshTokenExpiry = expiry
	user.TokenVersion++
	return nil
}

func (s *Gorm) CreateRole(ctx context.Context, role *models.Role) error {
	role.NormalizedName = models.NormalizeRoleName(role.Name)
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Gorm) FindRoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (s *Gorm) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := s.db.WithContext(ctx).
		Where("normalized_name = ?", models.NormalizeRoleName(name)).
		First(&role).Error
	if err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (s *Gorm) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.WithContext(ctx).Order("normalized_name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *Gorm) UpdateRole(ctx context.Context, role *models.Role) error {
	role.NormalizedName = models.NormalizeRoleName(role.Name)
	res := s.db.WithContext(ctx).
		Model(&models.Role{}).
		Where("id = ?", role.ID).
		Updates(map[string]interface{}{
			"name":            role.Name,
			"normalized_name": role.NormalizedName,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) DeleteRole(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_roles WHERE role_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Role{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Gorm) AssignRole(ctx context.Context, user *models.User, role *models.Role) error {
	return s.db.WithContext(ctx).Model(user).Association("Roles").Append(role)
}

func (s *Gorm) RemoveRole(ctx context.Context, user *models.User, role *models.Role) error {
	return s.db.WithContext(ctx).Model(user).Association("Roles").Delete(role)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
