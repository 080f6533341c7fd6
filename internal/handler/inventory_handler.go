package handler

import (
	"errors"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// adjustInventoryRequest mirrors the wire shape of the inventory PATCH:
// {"data": {"attributes": {"quantity": <delta>}}}
type adjustInventoryRequest struct {
	Data struct {
		Attributes struct {
			Quantity *int `json:"quantity"`
		} `json:"attributes"`
	} `json:"data"`
}

func inventoryResource(inv *model.Inventory) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"type": "inventory",
			"id":   inv.ProductID,
			"attributes": fiber.Map{
				"quantity": inv.Quantity,
			},
		},
	}
}

func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "INVALID_PRODUCT_ID"})
	}

	inv, err := h.service.GetInventory(c.UserContext(), productID)
	if err != nil {
		if errors.Is(err, service.ErrInventoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "INVENTORY_NOT_FOUND"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "INTERNAL_ERROR"})
	}

	return c.JSON(inventoryResource(inv))
}

func (h *InventoryHandler) AdjustInventory(c *fiber.Ctx) error {
	productID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "INVALID_PRODUCT_ID"})
	}

	var req adjustInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "INVALID_JSON"})
	}
	if req.Data.Attributes.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "QUANTITY_REQUIRED"})
	}

	inv, err := h.service.AdjustInventory(c.UserContext(), productID, *req.Data.Attributes.Quantity)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "INTERNAL_ERROR"})
	}

	return c.JSON(inventoryResource(inv))
}
