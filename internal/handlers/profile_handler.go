package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/billing_api/internal/middleware"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/ledger"
)

type ProfileHandler struct {
	Ledger *ledger.LedgerService
}

func NewProfileHandler(ledgerSvc *ledger.LedgerService) *ProfileHandler {
	return &ProfileHandler{Ledger: ledgerSvc}
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentProfile(c))
}

// Entries lists the caller's balance history, newest first.
func (h *ProfileHandler) Entries(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	entries, err := h.Ledger.ListEntries(c.UserContext(), middleware.CurrentProfile(c).ID, limit)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}
