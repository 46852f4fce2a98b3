package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential record. The refresh session is single-slot: at most
// one active refresh token per user, stored as a SHA-256 hex hash.
// RefreshTokenHash == nil means no refresh is currently possible (revoked or
// never issued); RefreshTokenExpiry is only meaningful while the hash is set.
type User struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username           string         `gorm:"size:255;not null" json:"username"`
	NormalizedUsername string         `gorm:"size:255;not null;uniqueIndex" json:"-"`
	Email              string         `gorm:"size:255;not null" json:"email"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	RefreshTokenHash   *string        `gorm:"size:64" json:"-"`
	RefreshTokenExpiry time.Time      `json:"-"`
	TokenVersion       int64          `gorm:"not null;default:0" json:"-"`
	Roles              []Role         `gorm:"many2many:user_roles" json:"roles"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// NormalizeUsername folds a username for case-insensitive lookup.
func NormalizeUsername(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// RoleNames returns the display-case names of the user's roles, as they are
// embedded into access-token claims.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
