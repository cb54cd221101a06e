// Package balance implementa el agregador mensual y el motor de balance:
// a partir de las tablas de Ventas, Mayoristas y Gastos de un mes calcula el
// saldo PG (plata de gestión) y el saldo neto después de retiros personales.
package balance

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/wholesale"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// Service motor de balance.
type Service struct {
	store     ledger.Store
	wholesale *wholesale.Service
	log       *logger.Logger
}

// NewService construye el motor sobre el libro y el caso de uso mayorista.
func NewService(store ledger.Store, ws *wholesale.Service, log *logger.Logger) *Service {
	return &Service{store: store, wholesale: ws, log: log}
}

// amountCandidates columnas de importe según el libro.
func amountCandidates(base string) []string {
	if base == ledger.ExpensesBase {
		return ledger.ExpenseAmountColumn
	}
	return ledger.SaleAmountColumn
}

// Summarize calcula totales y apertura por categoría de una tabla mensual.
// Tabla ausente = mes sin actividad (resumen en cero); backend caído = error.
// Se acumula a precisión completa y se redondea una sola vez al final.
func (s *Service) Summarize(base string, year, month int) (entity.MonthlySummary, error) {
	summary := entity.MonthlySummary{Total: decimal.Zero, ByCategory: map[string]decimal.Decimal{}}
	table, err := s.store.Table(ledger.MonthlyTableName(base, year, month))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return summary, nil
		}
		return summary, err
	}
	rows, err := table.Rows()
	if err != nil {
		return summary, err
	}

	candidates := amountCandidates(base)
	for _, row := range rows {
		category := row.Get(ledger.CategoryColumn...)
		if category == "" {
			category = ledger.Uncategorized
		}
		amount := row.Amount(candidates...)
		summary.Total = summary.Total.Add(amount)
		summary.Count++
		summary.ByCategory[category] = summary.ByCategory[category].Add(amount)
	}
	summary.Total = summary.Total.Round(2)
	for category, total := range summary.ByCategory {
		summary.ByCategory[category] = total.Round(2)
	}
	return summary, nil
}

// NetBalance arma el reporte de balance del mes.
//
// Los gastos se parten en tres grupos disjuntos: PERSONALES (descuentan solo
// del neto), CANJES (se informan aparte, no son caja) y el resto (gastos del
// negocio, descuentan del saldo PG). Para PERSONALES y CANJES el agregado por
// categoría no alcanza porque todas las filas comparten la misma categoría;
// se relee la tabla cruda para abrir por subcategoría.
func (s *Service) NetBalance(year, month int) (*entity.BalanceReport, error) {
	sales, err := s.Summarize(ledger.SalesBase, year, month)
	if err != nil {
		return nil, err
	}
	wholesaleSummary, err := s.wholesale.Summary(year, month)
	if err != nil {
		return nil, err
	}
	expenses, err := s.Summarize(ledger.ExpensesBase, year, month)
	if err != nil {
		return nil, err
	}

	business := entity.CategorySummary{Total: decimal.Zero, ByCategory: map[string]decimal.Decimal{}}
	personal := entity.CategorySummary{Total: decimal.Zero, ByCategory: map[string]decimal.Decimal{}}
	canjes := entity.CategorySummary{Total: decimal.Zero, ByCategory: map[string]decimal.Decimal{}}

	for category, total := range expenses.ByCategory {
		switch entity.ClassifyCategory(category) {
		case entity.ClassPersonal:
			personal.ByCategory = s.subcategoryBreakdown(year, month, entity.CategoryPersonal, "General")
		case entity.ClassCanje:
			canjes.Total = canjes.Total.Add(total)
			canjes.ByCategory = s.subcategoryBreakdown(year, month, entity.CategoryCanje, "N/A")
		default:
			business.Total = business.Total.Add(total)
			business.ByCategory[category] = total
		}
	}
	for _, total := range personal.ByCategory {
		personal.Total = personal.Total.Add(total)
	}

	saldoPG := sales.Total.Add(wholesaleSummary.Total).Sub(business.Total)
	saldoNeto := saldoPG.Sub(personal.Total)

	report := &entity.BalanceReport{
		Sales:     sales,
		Wholesale: wholesaleSummary,
		Canjes:    roundSummary(canjes),
		Business:  roundSummary(business),
		Personal:  roundSummary(personal),
		SaldoPG:   saldoPG.Round(2),
		SaldoNeto: saldoNeto.Round(2),
		MonthName: ledger.MonthName(month),
		Year:      year,
	}
	return report, nil
}

// subcategoryBreakdown relee la tabla de gastos del mes y acumula los montos
// de una categoría por subcategoría. Errores de lectura devuelven apertura
// vacía: el total de la categoría ya quedó contado por el agregado.
func (s *Service) subcategoryBreakdown(year, month int, category, defaultLabel string) map[string]decimal.Decimal {
	breakdown := map[string]decimal.Decimal{}
	table, err := s.store.Table(ledger.MonthlyTableName(ledger.ExpensesBase, year, month))
	if err != nil {
		return breakdown
	}
	rows, err := table.Rows()
	if err != nil {
		s.log.Error().Err(err).Str("categoria", category).Msg("no se pudo abrir la categoría por subcategoría")
		return breakdown
	}
	for _, row := range rows {
		if row.Get(ledger.CategoryColumn...) != category {
			continue
		}
		subcategory := row.Get("Subcategoría", "Subcategoria")
		if subcategory == "" {
			subcategory = defaultLabel
		}
		breakdown[subcategory] = breakdown[subcategory].Add(row.Amount(ledger.ExpenseAmountColumn...))
	}
	return breakdown
}

func roundSummary(summary entity.CategorySummary) entity.CategorySummary {
	summary.Total = summary.Total.Round(2)
	for key, total := range summary.ByCategory {
		summary.ByCategory[key] = total.Round(2)
	}
	return summary
}

// YearMonth un mes con actividad registrada.
type YearMonth struct {
	Year  int
	Month int
}

// AvailableMonths descubre qué meses tienen tablas de Ventas, Gastos o
// Mayoristas, ordenados del más reciente al más viejo.
func (s *Service) AvailableMonths() ([]YearMonth, error) {
	titles, err := s.store.TableTitles()
	if err != nil {
		return nil, err
	}
	seen := map[YearMonth]bool{}
	for _, title := range titles {
		base, year, month, ok := ledger.ParseMonthlyTitle(title)
		if !ok {
			continue
		}
		switch base {
		case ledger.SalesBase, ledger.ExpensesBase, ledger.WholesaleBase:
			seen[YearMonth{Year: year, Month: month}] = true
		}
	}
	months := make([]YearMonth, 0, len(seen))
	for ym := range seen {
		months = append(months, ym)
	}
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
	return months, nil
}
