package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "ektagames/internal/log"
	"ektagames/internal/services"
	"ektagames/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// parseCredentials returns per-field messages when the form is unusable.
func parseCredentials(c *fiber.Ctx) (credentials, fiber.Map) {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return in, fiber.Map{"body": "invalid request body"}
	}
	errs := fiber.Map{}
	email, ok := validate.Email(in.Email)
	if !ok {
		errs["email"] = "Please enter a valid email address."
	}
	in.Email = email
	if !validate.Password(in.Password) {
		errs["password"] = "Password must be at least 6 characters."
	}
	if len(errs) > 0 {
		return in, errs
	}
	return in, nil
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrEmailInUse):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrBadCreds):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	sid := ensureSID(c)
	in, bad := parseCredentials(c)
	if bad != nil {
		applog.Security(c, "auth.signup.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": bad})
	}

	u, err := h.Auth.SignUp(c.UserContext(), sid, in.Email, in.Password)
	if err != nil {
		status := authStatus(err)
		if status == fiber.StatusInternalServerError {
			applog.Error(c, "auth.signup.error", err, map[string]any{"email": in.Email})
		} else {
			applog.Security(c, "auth.signup.fail", map[string]any{"email": in.Email})
		}
		return c.Status(status).JSON(fiber.Map{"error": services.AuthMessage(err)})
	}

	applog.Audit(c, "auth.signup.success", map[string]any{"email": in.Email})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	sid := ensureSID(c)
	in, bad := parseCredentials(c)
	if bad != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": bad})
	}

	u, err := h.Auth.Login(c.UserContext(), sid, in.Email, in.Password)
	if err != nil {
		status := authStatus(err)
		if status == fiber.StatusInternalServerError {
			applog.Error(c, "auth.login.error", err, map[string]any{"email": in.Email})
		} else {
			applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		}
		return c.Status(status).JSON(fiber.Map{"error": services.AuthMessage(err)})
	}

	applog.Audit(c, "auth.login.success", map[string]any{"email": in.Email})
	return c.JSON(fiber.Map{"user": u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		if err := h.Auth.Logout(c.UserContext(), sid); err != nil {
			applog.Error(c, "auth.logout", err, nil)
		}
	}
	expireSID(c)
	applog.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	u := currentUser(c)
	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "You must be logged in."})
	}
	return c.JSON(fiber.Map{"user": u})
}
