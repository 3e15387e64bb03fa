package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{apperr.ErrValidation, fiber.StatusBadRequest, "validation_error"},
	{apperr.ErrAlreadyPaid, fiber.StatusBadRequest, "already_paid"},
	{apperr.ErrInsufficientBalance, fiber.StatusBadRequest, "insufficient_balance"},
	{apperr.ErrDepositLimitExceeded, fiber.StatusBadRequest, "deposit_limit_exceeded"},
	{apperr.ErrForbidden, fiber.StatusForbidden, "forbidden"},
	{apperr.ErrNotFound, fiber.StatusNotFound, "not_found"},
}

// StatusFor maps a service error to its HTTP status and machine code.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "internal_error"
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "validation_error"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusUpgradeRequired:
		return "upgrade_required"
	}
	if status >= fiber.StatusInternalServerError {
		return "internal_error"
	}
	return strings.ReplaceAll(strings.ToLower(fiberutils.StatusMessage(status)), " ", "_")
}

// ErrorHandler renders every error as {"success": false, "code", "message"}.
// Internal failures are logged and never echoed to the caller.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"code":    codeForStatus(fe.Code),
				"message": fe.Message,
			})
		}

		status, code := StatusFor(err)
		message := err.Error()
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
			message = "Internal server error"
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    code,
			"message": message,
		})
	}
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := strings.TrimSpace(c.Params(param))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", apperr.ErrValidation, param, raw)
	}
	return uint(id), nil
}
