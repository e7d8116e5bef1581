package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "ektagames/internal/log"
	"ektagames/internal/services"
	"ektagames/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	productID, ok := validate.ProductID(c.Query("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing or invalid productId",
		})
	}
	return c.JSON(h.Inv.CheckAvailability(c.UserContext(), productID))
}
