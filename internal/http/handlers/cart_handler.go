package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"ektagames/internal/cart"
	"ektagames/internal/domain"
	applog "ektagames/internal/log"
	"ektagames/internal/services"
	"ektagames/internal/validate"
)

type CartHandler struct {
	Hub     *cart.Hub
	Catalog *services.CatalogService
}

type addItemRequest struct {
	ProductID int `json:"productId" form:"productId"`
	Quantity  int `json:"quantity" form:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

// store returns the signed-in session's store. Anonymous callers get a
// throwaway store so browsing never grows the hub.
func (h *CartHandler) store(c *fiber.Ctx) *cart.Store {
	if currentUser(c) == nil {
		return h.Hub.Anonymous()
	}
	return h.Hub.Store(c.Cookies("sid"))
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	st := h.store(c)
	return c.JSON(fiber.Map{
		"authenticated": st.Authenticated(),
		"cart":          st.Snapshot(),
		"notices":       st.Notices(),
	})
}

// accepted answers a mutation. The cart in the body is the last observed
// snapshot; the write shows up there once the subscription delivers it.
func accepted(c *fiber.Ctx, st *cart.Store, action string, fields map[string]any) error {
	notices := st.Notices()
	if !st.Authenticated() {
		applog.Security(c, action+".rejected", fields)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"cart": st.Snapshot(), "notices": notices})
	}
	applog.Audit(c, action, fields)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"cart": st.Snapshot(), "notices": notices})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addItemRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID < 1 {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	qty := validate.ClampQty(req.Quantity)

	st := h.store(c)
	if !st.Authenticated() {
		st.AddToCart(c.UserContext(), domain.Product{ID: req.ProductID}, qty)
		return accepted(c, st, "cart.add", map[string]any{"product_id": req.ProductID})
	}
	p, ok := h.Catalog.GetProduct(c.UserContext(), req.ProductID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "This item is no longer available"})
	}
	st.AddToCart(c.UserContext(), p, qty)
	return accepted(c, st, "cart.add", map[string]any{"product_id": req.ProductID, "qty": qty})
}

func (h *CartHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "item"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Quantity > 50 {
		req.Quantity = 50
	}
	st := h.store(c)
	st.UpdateQuantity(c.UserContext(), id, req.Quantity)
	return accepted(c, st, "cart.update", map[string]any{"item_id": id, "qty": req.Quantity})
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "item"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid item id"})
	}
	st := h.store(c)
	st.RemoveFromCart(c.UserContext(), id)
	return accepted(c, st, "cart.remove", map[string]any{"item_id": id})
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	st := h.store(c)
	st.ClearCart(c.UserContext())
	return accepted(c, st, "cart.clear", nil)
}

// Events streams cart snapshots and notices as server-sent events until the
// client goes away or the session's store is dropped.
func (h *CartHandler) Events(c *fiber.Ctx) error {
	if currentUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": cart.MsgLoginRequired})
	}
	st := h.store(c)
	events, cancel := st.Listen()
	first := cart.Event{Cart: st.Snapshot()}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		streamEvents(w, first, events, 15*time.Second)
	})
	return nil
}

func streamEvents(w *bufio.Writer, first cart.Event, events <-chan cart.Event, every time.Duration) {
	if writeEvent(w, first) != nil {
		return
	}
	ping := time.NewTicker(every)
	defer ping.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok || writeEvent(w, ev) != nil {
				return
			}
		case <-ping.C:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, ev cart.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
