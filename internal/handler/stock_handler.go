package handler

import (
	"fmt"
	"time"

	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StockHandler struct {
	booking service.BookingService
	export  service.ExportService
}

func NewStockHandler(booking service.BookingService, export service.ExportService) *StockHandler {
	return &StockHandler{booking: booking, export: export}
}

type bookOutRequest struct {
	Lines     []model.BookingLine `json:"lines"`
	ProjectID *uuid.UUID          `json:"project_id"`
	Note      string              `json:"note"`
}

// BookOut deducts stock for every line. Shortages come back as warnings, not errors.
// POST /api/v1/stock/book-out
func (h *StockHandler) BookOut(c *fiber.Ctx) error {
	var req bookOutRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	result, err := h.booking.BookOut(c.UserContext(), service.BookOutRequest{
		Lines:     req.Lines,
		Actor:     actorFrom(c),
		ProjectID: req.ProjectID,
		Note:      req.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock booked out", "data": result})
}

type bookInRequest struct {
	Lines []model.BookingLine `json:"lines"`
	Note  string              `json:"note"`
}

// BookIn records a goods receipt.
// POST /api/v1/stock/book-in
func (h *StockHandler) BookIn(c *fiber.Ctx) error {
	var req bookInRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	result, err := h.booking.BookIn(c.UserContext(), service.BookInRequest{
		Lines: req.Lines,
		Actor: actorFrom(c),
		Note:  req.Note,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock booked in", "data": result})
}

type moveStockRequest struct {
	ProductID      uuid.UUID       `json:"product_id"`
	FromLocationID uuid.UUID       `json:"from_location_id"`
	ToLocationID   uuid.UUID       `json:"to_location_id"`
	Quantity       decimal.Decimal `json:"quantity"`
}

// Move transfers stock between two locations.
// POST /api/v1/stock/move
func (h *StockHandler) Move(c *fiber.Ctx) error {
	var req moveStockRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	err := h.booking.MoveStock(c.UserContext(), service.MoveStockRequest{
		ProductID:      req.ProductID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		Actor:          actorFrom(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock moved"})
}

// Export streams the stock overview as an XLSX workbook.
// GET /api/v1/stock/export
func (h *StockHandler) Export(c *fiber.Ctx) error {
	data, err := h.export.StockWorkbook(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("voorraad-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
