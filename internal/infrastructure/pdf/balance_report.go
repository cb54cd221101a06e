// Package pdf genera el reporte mensual de balance en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Balance Mensual │ Mes Año │ id de reporte          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Ventas / Mayoristas / Gastos / Saldo PG / Neto    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  GASTOS DEL NEGOCIO por categoría                           │
//	│  PERSONALES por subcategoría │ CANJES por subcategoría      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DETALLE MAYORISTA: Cliente | Producto | Cant | Cobrado     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 20, Green: 80, Blue: 60}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 160, Green: 40, Blue: 40}
)

// BalanceReportGenerator genera el PDF del balance mensual.
type BalanceReportGenerator struct{}

// NewBalanceReportGenerator construye el generador.
func NewBalanceReportGenerator() *BalanceReportGenerator { return &BalanceReportGenerator{} }

// Generate arma el documento y devuelve sus bytes junto con el nombre de
// archivo sugerido ("balance-agosto-2026-<uuid corto>.pdf").
func (g *BalanceReportGenerator) Generate(report *entity.BalanceReport) ([]byte, string, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(fmt.Sprintf("Balance %s %d", report.MonthName, report.Year), true).
		Build()

	m := maroto.New(cfg)

	reportID := uuid.NewString()[:8]
	m.AddRows(headerRow(report, reportID))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRows(report)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(breakdownRows("GASTOS DEL NEGOCIO", report.Business.ByCategory)...)
	m.AddRows(breakdownRows("PERSONALES", report.Personal.ByCategory)...)
	m.AddRows(breakdownRows("CANJES", report.Canjes.ByCategory)...)

	if len(report.Wholesale.Details) > 0 {
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		m.AddRows(wholesaleRows(report.Wholesale)...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generar documento: %w", err)
	}
	filename := fmt.Sprintf("balance-%s-%d-%s.pdf", report.MonthName, report.Year, reportID)
	return doc.GetBytes(), filename, nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(report *entity.BalanceReport, reportID string) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("BALANCE MENSUAL", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s %d", report.MonthName, report.Year), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 9,
			}),
		),
		col.New(4).Add(
			text.New("Reporte "+reportID, props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// summaryRows: el bloque de cifras principales, saldo PG y saldo neto al pie.
func summaryRows(report *entity.BalanceReport) []core.Row {
	summaryLine := func(label string, amount decimal.Decimal, c *props.Color) core.Row {
		return row.New(6).Add(
			col.New(6).Add(text.New(label, props.Text{Size: 9, Top: 1})),
			col.New(6).Add(text.New("$"+formatMoney(amount.StringFixed(0)), props.Text{
				Size: 9, Align: align.Right, Top: 1, Color: c,
			})),
		)
	}
	strongLine := func(label string, amount decimal.Decimal) core.Row {
		return row.New(8).Add(
			col.New(6).Add(text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 11, Color: colorPrimary, Top: 1,
			})),
			col.New(6).Add(text.New("$"+formatMoney(amount.StringFixed(0)), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 1,
			})),
		)
	}
	return []core.Row{
		summaryLine("Ventas", report.Sales.Total, nil),
		summaryLine("Mayoristas (cobrado)", report.Wholesale.Total, nil),
		summaryLine("Gastos del negocio", report.Business.Total.Neg(), colorRed),
		strongLine("SALDO PG", report.SaldoPG),
		summaryLine("Retiros personales", report.Personal.Total.Neg(), colorRed),
		strongLine("SALDO NETO", report.SaldoNeto),
		summaryLine("Canjes (fuera del balance)", report.Canjes.Total, colorGray),
	}
}

// breakdownRows: apertura ordenada por monto descendente; se omite si no hay datos.
func breakdownRows(title string, byCategory map[string]decimal.Decimal) []core.Row {
	if len(byCategory) == 0 {
		return nil
	}
	type item struct {
		label  string
		amount decimal.Decimal
	}
	items := make([]item, 0, len(byCategory))
	for label, amount := range byCategory {
		items = append(items, item{label, amount})
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].amount.Equal(items[j].amount) {
			return items[i].amount.GreaterThan(items[j].amount)
		}
		return items[i].label < items[j].label
	})

	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}))),
	}
	for _, it := range items {
		rows = append(rows, row.New(5).Add(
			col.New(6).Add(text.New(it.label, props.Text{Size: 8, Top: 1, Left: 2})),
			col.New(6).Add(text.New("$"+formatMoney(it.amount.StringFixed(0)), props.Text{
				Size: 8, Align: align.Right, Top: 1,
			})),
		))
	}
	return rows
}

// wholesaleRows: detalle por operación mayorista.
func wholesaleRows(summary entity.WholesaleSummary) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New("DETALLE MAYORISTA", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}))),
		row.New(6).Add(
			headerCol("Cliente", 4, align.Left),
			headerCol("Producto", 4, align.Left),
			headerCol("Cant.", 1, align.Center),
			headerCol("Cobrado", 3, align.Right),
		),
	}
	for _, d := range summary.Details {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(d.Client, props.Text{Size: 8, Top: 1})),
			col.New(4).Add(text.New(d.Product, props.Text{Size: 8, Top: 1})),
			col.New(1).Add(text.New(fmt.Sprintf("%d", d.Quantity), props.Text{
				Size: 8, Align: align.Center, Top: 1,
			})),
			col.New(3).Add(text.New("$"+formatMoney(d.Amount.StringFixed(0)), props.Text{
				Size: 8, Align: align.Right, Top: 1,
			})),
		))
	}
	return rows
}

func headerCol(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Color: colorGray, Top: 1,
	}))
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000". Respeta el signo negativo.
func formatMoney(s string) string {
	if len(s) > 0 && s[0] == '-' {
		return "-" + formatMoney(s[1:])
	}
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
