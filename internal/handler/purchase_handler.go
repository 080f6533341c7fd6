package handler

import (
	"errors"

	"go-inventory-ledger/internal/client"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"
	"go-inventory-ledger/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

type purchaseRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

func purchaseResource(p *model.Purchase) fiber.Map {
	return fiber.Map{
		"data": fiber.Map{
			"type": "purchase",
			"id":   p.ID,
			"attributes": fiber.Map{
				"productId":  p.ProductID,
				"quantity":   p.Quantity,
				"unitPrice":  p.UnitPrice,
				"totalPrice": p.TotalPrice,
				"createdAt":  p.CreatedAt,
			},
		},
	}
}

func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "INVALID_JSON"})
	}
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "VALIDATION_FAILED",
			"message": validator.FormatErrors(errs),
		})
	}

	purchase, err := h.service.Purchase(c.UserContext(), req.ProductID, req.Quantity)
	if err != nil {
		status, code := purchaseErrorStatus(err)
		return c.Status(status).JSON(fiber.Map{"error": code})
	}

	return c.Status(fiber.StatusCreated).JSON(purchaseResource(purchase))
}

func purchaseErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return fiber.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, service.ErrProductNotFound):
		return fiber.StatusNotFound, "PRODUCT_NOT_FOUND"
	case errors.Is(err, service.ErrInventoryNotFound):
		return fiber.StatusUnprocessableEntity, "INVENTORY_NOT_FOUND"
	case errors.Is(err, service.ErrInsufficientStock):
		return fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return fiber.StatusServiceUnavailable, "PRODUCTS_SERVICE_UNAVAILABLE"
	case errors.Is(err, client.ErrMalformedResponse):
		return fiber.StatusBadGateway, "MALFORMED_UPSTREAM_RESPONSE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, err := h.service.GetAllPurchases(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "INTERNAL_ERROR"})
	}

	items := make([]fiber.Map, 0, len(purchases))
	for i := range purchases {
		items = append(items, purchaseResource(&purchases[i])["data"].(fiber.Map))
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "INVALID_PURCHASE_ID"})
	}

	purchase, err := h.service.GetPurchaseByID(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "PURCHASE_NOT_FOUND"})
	}
	return c.JSON(purchaseResource(purchase))
}
