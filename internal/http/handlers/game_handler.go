package handlers

import (
	"github.com/gofiber/fiber/v2"

	"ektagames/internal/services"
)

type GameHandler struct {
	Games services.GameService
}

func (h *GameHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"games": h.Games.List()})
}

func (h *GameHandler) Detail(c *fiber.Ctx) error {
	g, ok := h.Games.BySlug(c.Params("slug"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	}
	return c.JSON(g)
}
