package handler

import (
	"time"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"
	"bouw-backoffice/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type TimeRegistrationHandler struct {
	service service.TimeRegistrationService
}

func NewTimeRegistrationHandler(s service.TimeRegistrationService) *TimeRegistrationHandler {
	return &TimeRegistrationHandler{service: s}
}

type submitTimeRequest struct {
	ProjectID uuid.UUID        `json:"project_id"`
	Date      string           `json:"date"`
	Lines     []model.WorkLine `json:"lines"`
}

// Submit persists a day's work lines and books out the catalog materials on them.
// POST /api/v1/time-registrations
func (h *TimeRegistrationHandler) Submit(c *fiber.Ctx) error {
	var req submitTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return respondError(c, apperror.Validation("date must be formatted as YYYY-MM-DD"))
	}

	result, err := h.service.Submit(c.UserContext(), service.SubmitTimeRequest{
		Actor:     actorFrom(c),
		ProjectID: req.ProjectID,
		Date:      date,
		Lines:     req.Lines,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Time registered", "data": result})
}

// List returns the caller's registrations. Defaults to the last 30 days.
// GET /api/v1/time-registrations?from=&to=
func (h *TimeRegistrationHandler) List(c *fiber.Ctx) error {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return respondError(c, apperror.Validation("from must be formatted as YYYY-MM-DD"))
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return respondError(c, apperror.Validation("to must be formatted as YYYY-MM-DD"))
		}
		to = t
	}

	rows, err := h.service.ListByUser(c.UserContext(), actorFrom(c).ID, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}
