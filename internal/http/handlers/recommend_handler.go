package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "ektagames/internal/log"
	"ektagames/internal/services"
)

type RecommendHandler struct {
	Rec *services.RecommendService
}

type recommendRequest struct {
	Preferences string `json:"preferences"`
	Count       int    `json:"count"`
}

func (h *RecommendHandler) Recommend(c *fiber.Ctx) error {
	var req recommendRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	recs, err := h.Rec.Recommend(c.UserContext(), req.Preferences, req.Count)
	switch {
	case errors.Is(err, services.ErrPreferencesTooShort):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": fiber.Map{"preferences": err.Error()}})
	case err != nil:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": services.MsgRecommendationsUnavailable})
	}
	return c.JSON(fiber.Map{"recommendations": recs})
}
