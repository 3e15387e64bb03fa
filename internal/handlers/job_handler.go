package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/billing_api/internal/middleware"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/billing"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/contracts"
)

type JobHandler struct {
	Contracts *contracts.ContractService
	Billing   *billing.BillingService
}

func NewJobHandler(contractSvc *contracts.ContractService, billingSvc *billing.BillingService) *JobHandler {
	return &JobHandler{Contracts: contractSvc, Billing: billingSvc}
}

func (h *JobHandler) ListUnpaid(c *fiber.Ctx) error {
	p := middleware.CurrentProfile(c)
	jobs, err := h.Contracts.ListUnpaidJobsFor(c.UserContext(), nil, p.ID, p.Type)
	if err != nil {
		return err
	}
	return c.JSON(jobs)
}

// Pay settles one of the caller's jobs.
func (h *JobHandler) Pay(c *fiber.Ctx) error {
	jobID, err := parseID(c, "job_id")
	if err != nil {
		return err
	}

	res, err := h.Billing.PayJob(c.UserContext(), jobID, middleware.CurrentProfile(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": res.Message(),
		"amount":  res.Amount,
		"balance": res.ClientBalance,
	})
}
