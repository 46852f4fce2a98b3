package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/shelfwise/auth-backend/internal/dto"
	"github.com/shelfwise/auth-backend/internal/services"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) List(c *fiber.Ctx) error {
	roles, err := h.roleService.List(c.Context())
	if err != nil {
		return internalError(c)
	}

	resp := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		resp = append(resp, dto.RoleResponse{ID: r.ID, Name: r.Name})
	}
	return c.JSON(resp)
}

func (h *RoleHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid role id")
	}

	role, err := h.roleService.Get(c.Context(), id)
	if err != nil {
		return mapRoleError(c, err)
	}
	return c.JSON(dto.RoleResponse{ID: role.ID, Name: role.Name})
}

func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return badRequest(c, "Role name is required")
	}

	role, err := h.roleService.Create(c.Context(), req.Name)
	if err != nil {
		return mapRoleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RoleResponse{ID: role.ID, Name: role.Name})
}

func (h *RoleHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid role id")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return badRequest(c, "Role name is required")
	}

	role, err := h.roleService.Update(c.Context(), id, req.Name)
	if err != nil {
		return mapRoleError(c, err)
	}
	return c.JSON(dto.RoleResponse{ID: role.ID, Name: role.Name})
}

func (h *RoleHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid role id")
	}

	if err := h.roleService.Delete(c.Context(), id); err != nil {
		return mapRoleError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Role deleted"})
}

func (h *RoleHandler) RolesForUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	names, err := h.roleService.RolesForUser(c.Context(), userID)
	if err != nil {
		return mapRoleError(c, err)
	}
	return c.JSON(names)
}

func (h *RoleHandler) Assign(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil || req.RoleName == "" {
		return badRequest(c, "Role name is required")
	}

	if err := h.roleService.Assign(c.Context(), userID, req.RoleName); err != nil {
		return mapRoleError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Role assigned"})
}

func (h *RoleHandler) Remove(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	roleName := c.Params("role")
	if roleName == "" {
		return badRequest(c, "Role name is required")
	}

	if err := h.roleService.Remove(c.Context(), userID, roleName); err != nil {
		return mapRoleError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Role removed"})
}

func (h *RoleHandler) IsInRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	roleName := c.Params("role")

	inRole, err := h.roleService.IsInRole(c.Context(), userID, roleName)
	if err != nil {
		return mapRoleError(c, err)
	}
	return c.JSON(dto.IsInRoleResponse{UserID: userID, RoleName: roleName, InRole: inRole})
}

func mapRoleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrRoleNotFound), errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrRoleExists), errors.Is(err, services.ErrAlreadyAssigned):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrRoleNotAllowed), errors.Is(err, services.ErrNotAssigned):
		return badRequest(c, err.Error())
	}
	return internalError(c)
}
