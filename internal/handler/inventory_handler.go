package handler

import (
	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidJSON(c)
	}

	if err := h.service.CreateProduct(c.UserContext(), &product, actorFrom(c)); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id", "product")
	if !ok {
		return nil
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return invalidJSON(c)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), productID, &product, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id", "product")
	if !ok {
		return nil
	}

	product, err := h.service.GetProduct(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

type photoUploadRequest struct {
	ContentType string `json:"content_type"`
}

// PhotoUploadURL hands out a presigned PUT for the product photo.
// POST /api/v1/products/:id/photo-upload-url
func (h *InventoryHandler) PhotoUploadURL(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "id", "product")
	if !ok {
		return nil
	}

	var req photoUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	upload, err := h.service.PhotoUploadURL(c.UserContext(), productID, req.ContentType, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(upload)
}

// POST /api/v1/locations
func (h *InventoryHandler) CreateLocation(c *fiber.Ctx) error {
	var location model.Location
	if err := c.BodyParser(&location); err != nil {
		return invalidJSON(c)
	}

	if err := h.service.CreateLocation(c.UserContext(), &location, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Location created", "data": location})
}

// GET /api/v1/locations
func (h *InventoryHandler) GetLocations(c *fiber.Ctx) error {
	locations, err := h.service.GetAllLocations(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(locations)
}
