package handler

import (
	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type WorkCodeHandler struct {
	service service.WorkCodeService
}

func NewWorkCodeHandler(s service.WorkCodeService) *WorkCodeHandler {
	return &WorkCodeHandler{service: s}
}

// Available returns the work codes selectable for time entries on a project.
// GET /api/v1/projects/:id/work-codes/available
func (h *WorkCodeHandler) Available(c *fiber.Ctx) error {
	projectID, ok := paramUUID(c, "id", "project")
	if !ok {
		return nil
	}

	codes, err := h.service.ResolveAvailableCodes(c.UserContext(), projectID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(codes)
}

type setProjectCodesRequest struct {
	Codes []service.ProjectCodeInput `json:"codes"`
}

// SetProjectCodes replaces the project's work-code restriction. An empty
// list lifts the restriction.
// PUT /api/v1/projects/:id/work-codes
func (h *WorkCodeHandler) SetProjectCodes(c *fiber.Ctx) error {
	projectID, ok := paramUUID(c, "id", "project")
	if !ok {
		return nil
	}

	var req setProjectCodesRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	codes, err := h.service.SetProjectCodes(c.UserContext(), projectID, req.Codes, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Project work codes updated", "data": codes})
}

// GET /api/v1/work-codes?include_inactive=true
func (h *WorkCodeHandler) GetWorkCodes(c *fiber.Ctx) error {
	codes, err := h.service.ListWorkCodes(c.UserContext(), c.QueryBool("include_inactive", false))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(codes)
}

// POST /api/v1/work-codes
func (h *WorkCodeHandler) CreateWorkCode(c *fiber.Ctx) error {
	var code model.WorkCode
	if err := c.BodyParser(&code); err != nil {
		return invalidJSON(c)
	}

	if err := h.service.CreateWorkCode(c.UserContext(), &code, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Work code created", "data": code})
}

// PUT /api/v1/work-codes/:id
func (h *WorkCodeHandler) UpdateWorkCode(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "work code")
	if !ok {
		return nil
	}

	var code model.WorkCode
	if err := c.BodyParser(&code); err != nil {
		return invalidJSON(c)
	}

	updated, err := h.service.UpdateWorkCode(c.UserContext(), id, &code, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Work code updated", "data": updated})
}
