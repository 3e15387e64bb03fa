package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/billing"
)

type BalanceHandler struct {
	Billing *billing.BillingService
}

func NewBalanceHandler(billingSvc *billing.BillingService) *BalanceHandler {
	return &BalanceHandler{Billing: billingSvc}
}

// DepositRequest accepts the amount as a JSON number or a numeric string.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *BalanceHandler) Deposit(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", apperr.ErrValidation)
	}

	res, err := h.Billing.Deposit(c.UserContext(), userID, req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Deposit of %s processed successfully", res.Amount),
		"data":    res,
	})
}
