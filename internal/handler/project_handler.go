package handler

import (
	"strings"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"
	"bouw-backoffice/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// ProjectHandler serves the thin project master data straight from the repository.
type ProjectHandler struct {
	projectRepo repository.ProjectRepository
}

func NewProjectHandler(projectRepo repository.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{projectRepo: projectRepo}
}

// GET /api/v1/projects?all=true
func (h *ProjectHandler) GetProjects(c *fiber.Ctx) error {
	projects, err := h.projectRepo.FindAll(c.UserContext(), !c.QueryBool("all", false))
	if err != nil {
		return respondError(c, apperror.Store(err))
	}
	return c.JSON(projects)
}

// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var project model.Project
	if err := c.BodyParser(&project); err != nil {
		return invalidJSON(c)
	}
	project.Number = strings.TrimSpace(project.Number)
	project.Active = true

	if errs := validator.ValidateStruct(project); len(errs) > 0 {
		return respondError(c, apperror.Validation(validator.FirstError(errs)))
	}

	actor := actorFrom(c)
	project.CreatedBy = actor.ID.String()
	project.UpdatedBy = actor.ID.String()
	if err := h.projectRepo.Create(c.UserContext(), &project); err != nil {
		return respondError(c, apperror.Store(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Project created", "data": project})
}
