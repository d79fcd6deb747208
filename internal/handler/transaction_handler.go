package handler

import (
	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	booking service.BookingService
}

func NewTransactionHandler(booking service.BookingService) *TransactionHandler {
	return &TransactionHandler{booking: booking}
}

// GetTransactions lists ledger rows, newest first.
// GET /api/v1/transactions?product_id=&location_id=&project_id=&limit=&offset=
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	var filter model.TransactionFilter
	var err error
	if filter.ProductID, err = queryUUID(c, "product_id"); err != nil {
		return respondError(c, err)
	}
	if filter.LocationID, err = queryUUID(c, "location_id"); err != nil {
		return respondError(c, err)
	}
	if filter.ProjectID, err = queryUUID(c, "project_id"); err != nil {
		return respondError(c, err)
	}
	filter.Limit = c.QueryInt("limit", 100)
	filter.Offset = c.QueryInt("offset", 0)

	transactions, err := h.booking.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "transaction")
	if !ok {
		return nil
	}

	tx, err := h.booking.GetTransaction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tx)
}

// UpdateTransaction edits a ledger row. Stock levels are not touched.
// PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "transaction")
	if !ok {
		return nil
	}

	var upd model.TransactionUpdate
	if err := c.BodyParser(&upd); err != nil {
		return invalidJSON(c)
	}

	tx, err := h.booking.EditTransaction(c.UserContext(), id, upd, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction updated", "data": tx})
}

// DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id", "transaction")
	if !ok {
		return nil
	}

	if err := h.booking.DeleteTransaction(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}
