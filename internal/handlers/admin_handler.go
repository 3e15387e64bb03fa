package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/billing_api/internal/services/reports"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	Reports  *reports.ReportService
	Exporter *reports.Exporter
}

func NewAdminHandler(reportSvc *reports.ReportService, exporter *reports.Exporter) *AdminHandler {
	return &AdminHandler{Reports: reportSvc, Exporter: exporter}
}

func (h *AdminHandler) BestProfession(c *fiber.Ctx) error {
	r, err := reports.ParseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return err
	}
	res, err := h.Reports.BestProfession(c.UserContext(), r)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *AdminHandler) BestClients(c *fiber.Ctx) error {
	r, limit, err := clientsQuery(c)
	if err != nil {
		return err
	}
	res, err := h.Reports.BestClients(c.UserContext(), r, limit)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// ExportBestClients returns the best-clients report as an XLSX attachment.
func (h *AdminHandler) ExportBestClients(c *fiber.Ctx) error {
	r, limit, err := clientsQuery(c)
	if err != nil {
		return err
	}
	res, err := h.Reports.BestClients(c.UserContext(), r, limit)
	if err != nil {
		return err
	}

	content, err := h.Exporter.BestClients(r, res)
	if err != nil {
		return fmt.Errorf("render best clients workbook: %w", err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", h.Exporter.FileName(r)))
	return c.Send(content)
}

func clientsQuery(c *fiber.Ctx) (reports.Range, int, error) {
	r, err := reports.ParseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return reports.Range{}, 0, err
	}
	limit, err := reports.ParseLimit(c.Query("limit"), reports.DefaultClientLimit)
	if err != nil {
		return reports.Range{}, 0, err
	}
	return r, limit, nil
}
