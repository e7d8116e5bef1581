package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"ektagames/internal/cart"
	"ektagames/internal/domain"
	applog "ektagames/internal/log"
	"ektagames/internal/services"
)

type OrderHandler struct {
	Hub   *cart.Hub
	Order *services.OrderService
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var addr domain.ShippingAddress
	if err := c.BodyParser(&addr); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	st := h.Hub.Store(ensureSID(c))
	o, err := h.Order.Place(c.UserContext(), st, addr)
	var addrErr *services.AddressError
	switch {
	case errors.As(err, &addrErr):
		applog.Security(c, "validation.fail", map[string]any{"field": "shippingAddress"})
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": addrErr.Fields})
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Your cart is empty."})
	case errors.Is(err, services.ErrLoginRequired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "You must be logged in."})
	case err != nil:
		applog.Error(c, "order.place", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "We couldn't place your order. Please try again."})
	}

	applog.Audit(c, "order.placed", map[string]any{"order_id": o.ID, "total": o.Total.String(), "items": len(o.Items)})
	return c.Status(fiber.StatusCreated).JSON(o)
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	u := currentUser(c)
	orders, err := h.Order.History(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"orders": orders})
}
