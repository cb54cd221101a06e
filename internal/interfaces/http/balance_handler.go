package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/balance"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/dto"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/infrastructure/pdf"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
)

// BalanceHandler expone el motor de balance por HTTP.
type BalanceHandler struct {
	balance *balance.Service
	pdf     *pdf.BalanceReportGenerator
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(balanceSvc *balance.Service, generator *pdf.BalanceReportGenerator) *BalanceHandler {
	return &BalanceHandler{balance: balanceSvc, pdf: generator}
}

func (h *BalanceHandler) resolveMonth(c *fiber.Ctx) (int, int, error) {
	now := time.Now()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 || year < 2000 {
		return 0, 0, fmt.Errorf("mes %d/%d fuera de rango", month, year)
	}
	return year, month, nil
}

// Get devuelve el balance del mes pedido (por defecto, el corriente) en JSON.
func (h *BalanceHandler) Get(c *fiber.Ctx) error {
	year, month, err := h.resolveMonth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	report, err := h.balance.NetBalance(year, month)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONNECTED", Message: err.Error()})
	}
	return c.JSON(toBalanceResponse(report))
}

// GetPDF devuelve el mismo balance renderizado como PDF descargable.
func (h *BalanceHandler) GetPDF(c *fiber.Ctx) error {
	year, month, err := h.resolveMonth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	report, err := h.balance.NetBalance(year, month)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONNECTED", Message: err.Error()})
	}
	document, filename, err := h.pdf.Generate(report)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(document)
}

// Months lista los meses con actividad registrada, del más reciente al más viejo.
func (h *BalanceHandler) Months(c *fiber.Ctx) error {
	months, err := h.balance.AvailableMonths()
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "NOT_CONNECTED", Message: err.Error()})
	}
	out := make([]dto.MonthOption, 0, len(months))
	for _, ym := range months {
		out = append(out, dto.MonthOption{
			Year:  ym.Year,
			Month: ym.Month,
			Label: fmt.Sprintf("%s %d", ledger.MonthName(ym.Month), ym.Year),
		})
	}
	return c.JSON(out)
}

func toBalanceResponse(report *entity.BalanceReport) dto.BalanceResponse {
	return dto.BalanceResponse{
		Month:          report.MonthName,
		Year:           report.Year,
		SalesTotal:     report.Sales.Total.String(),
		WholesaleTotal: report.Wholesale.Total.String(),
		BusinessTotal:  report.Business.Total.String(),
		PersonalTotal:  report.Personal.Total.String(),
		CanjesTotal:    report.Canjes.Total.String(),
		SaldoPG:        report.SaldoPG.String(),
		SaldoNeto:      report.SaldoNeto.String(),
		Business:       stringAmounts(report.Business.ByCategory),
		Personal:       stringAmounts(report.Personal.ByCategory),
		Canjes:         stringAmounts(report.Canjes.ByCategory),
	}
}

func stringAmounts(amounts map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(amounts))
	for key, amount := range amounts {
		out[key] = amount.String()
	}
	return out
}
