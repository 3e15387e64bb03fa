package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/billing_api/internal/middleware"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/contracts"
)

type ContractHandler struct {
	Contracts *contracts.ContractService
}

func NewContractHandler(contractSvc *contracts.ContractService) *ContractHandler {
	return &ContractHandler{Contracts: contractSvc}
}

// List returns the caller's non-terminated contracts.
func (h *ContractHandler) List(c *fiber.Ctx) error {
	p := middleware.CurrentProfile(c)
	list, err := h.Contracts.ListContractsFor(c.UserContext(), p.ID, p.Type)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p := middleware.CurrentProfile(c)
	contract, err := h.Contracts.GetContractFor(c.UserContext(), id, p.ID, p.Type)
	if err != nil {
		return err
	}
	return c.JSON(contract)
}
