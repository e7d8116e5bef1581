package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ektagames/internal/catalog"
	applog "ektagames/internal/log"
	"ektagames/internal/services"
	"ektagames/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := catalog.Query{
		Category: strings.TrimSpace(c.Query("category")),
		Sort:     c.Query("sort"),
	}
	if raw := c.Query("q"); strings.TrimSpace(raw) != "" {
		s, ok := validate.Q(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Search may not contain control characters or angle brackets."})
		}
		q.Search = s
	}
	page, err := strconv.Atoi(c.Query("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	if page > 100 {
		page = 100
	}

	res, err := h.Catalog.List(c.UserContext(), q, page)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ProductID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	p, found := h.Catalog.GetProduct(c.UserContext(), id)
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	return c.JSON(p)
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"categories": h.Catalog.ListCategories(c.UserContext())})
}
