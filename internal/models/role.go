package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Predefined role catalog. Role creation is restricted to these names,
// compared case-insensitively; the display case of the created role is
// preserved and issued verbatim in token claims.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleArtist  = "ARTIST"
)

// AllowedRoleNames returns the closed set of role names, normalized.
func AllowedRoleNames() map[string]struct{} {
	return map[string]struct{}{
		RoleAdmin:   {},
		RoleManager: {},
		RoleArtist:  {},
	}
}

// NormalizeRoleName folds a role name for case-insensitive comparison.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

type Role struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	NormalizedName string    `gorm:"size:100;not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
