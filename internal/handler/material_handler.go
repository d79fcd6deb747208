package handler

import (
	"bouw-backoffice/internal/service"
	"bouw-backoffice/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MaterialHandler struct {
	service service.MaterialService
}

func NewMaterialHandler(s service.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: s}
}

// Search returns catalog candidates for a typed query.
// GET /api/v1/materials/search?q=
func (h *MaterialHandler) Search(c *fiber.Ctx) error {
	candidates, err := h.service.SearchByText(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(candidates)
}

// Scan resolves decoded barcode text.
// GET /api/v1/materials/scan?code=
func (h *MaterialHandler) Scan(c *fiber.Ctx) error {
	result, err := h.service.Scan(c.UserContext(), c.Query("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// Browse lists everything stocked at a location, optionally within one category.
// GET /api/v1/materials/browse?location_id=&category=
func (h *MaterialHandler) Browse(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		return respondError(c, apperror.Validation("location_id is required"))
	}
	var category *string
	if cat := c.Query("category"); cat != "" {
		category = &cat
	}

	items, err := h.service.BrowseByLocationAndCategory(c.UserContext(), locationID, category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Bookable lists products with positive stock at a location.
// GET /api/v1/stock/bookable?location_id=&q=
func (h *MaterialHandler) Bookable(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Query("location_id"))
	if err != nil {
		return respondError(c, apperror.Validation("location_id is required"))
	}

	items, err := h.service.SearchBookable(c.UserContext(), locationID, c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

type confirmLineRequest struct {
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Confirm validates a (product, location, quantity) selection.
// POST /api/v1/materials/confirm
func (h *MaterialHandler) Confirm(c *fiber.Ctx) error {
	var req confirmLineRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	line, err := h.service.ConfirmLine(c.UserContext(), req.ProductID, req.LocationID, req.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(line)
}
