package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
	"github.com/Windi-Fikriyansyah/billing_api/internal/config"
	"github.com/Windi-Fikriyansyah/billing_api/internal/middleware"
	"github.com/Windi-Fikriyansyah/billing_api/internal/utils"
)

type AdminAuthHandler struct {
	Admin config.AdminConfig
}

func NewAdminAuthHandler(cfg config.AdminConfig) *AdminAuthHandler {
	return &AdminAuthHandler{Admin: cfg}
}

type loginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the admin password for a bearer token.
func (h *AdminAuthHandler) Login(c *fiber.Ctx) error {
	if !h.Admin.Enabled() || h.Admin.PasswordHash == "" {
		return fmt.Errorf("%w: admin login is not configured", apperr.ErrNotFound)
	}

	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", apperr.ErrValidation)
	}
	password := strings.TrimSpace(req.Password)
	if password == "" {
		return fmt.Errorf("%w: password is required", apperr.ErrValidation)
	}

	if !utils.CheckPassword(h.Admin.PasswordHash, password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := utils.SignJWT(h.Admin.JWTSecret, "admin", utils.AdminRole, h.Admin.TokenTTLMin)
	if err != nil {
		return fmt.Errorf("sign admin token: %w", err)
	}

	ttl := time.Duration(h.Admin.TokenTTLMin) * time.Minute
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AdminCookie,
		Value:    token,
		Path:     "/admin",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"success":   true,
		"token":     token,
		"expiresIn": int(ttl.Seconds()),
	})
}
