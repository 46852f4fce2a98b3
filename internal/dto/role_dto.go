package dto

import "github.com/google/uuid"

type CreateRoleRequest struct {
	Name string `json:"name"`
}

type UpdateRoleRequest struct {
	Name string `json:"name"`
}

type RoleResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AssignRoleRequest struct {
	RoleName string `json:"role_name"`
}

type IsInRoleResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	RoleName string    `json:"role_name"`
	InRole   bool      `json:"in_role"`
}
