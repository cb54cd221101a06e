package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
)

func TestMonthlyTableName(t *testing.T) {
	assert.Equal(t, "Gastos Agosto 2026", ledger.MonthlyTableName(ledger.ExpensesBase, 2026, 8))
	assert.Equal(t, "Ventas Enero 2025", ledger.MonthlyTableName(ledger.SalesBase, 2025, 1))
	assert.Equal(t, "Ventas MesInvalido 2025", ledger.MonthlyTableName(ledger.SalesBase, 2025, 13))
}

func TestParseMonthlyTitle(t *testing.T) {
	base, year, month, ok := ledger.ParseMonthlyTitle("Pagos Futuros Marzo 2024")
	require.True(t, ok)
	assert.Equal(t, "Pagos Futuros", base)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 3, month)

	// Capitalización distinta en el título no debe impedir el parseo.
	_, _, month, ok = ledger.ParseMonthlyTitle("Ventas SEPTIEMBRE 2025")
	require.True(t, ok)
	assert.Equal(t, 9, month)

	for _, title := range []string{"Deudas", "Ventas 2025", "Ventas Brumario 2025", "Gastos Mayo xx"} {
		_, _, _, ok := ledger.ParseMonthlyTitle(title)
		assert.False(t, ok, "%q no debe parsear como tabla mensual", title)
	}
}

func TestFindColumn_InsensibleATildesYCaso(t *testing.T) {
	headers := []string{"Fecha", "CATEGORIA", "Subcategoría", "Monto Final"}

	assert.Equal(t, 2, ledger.FindColumn(headers, "Categoría"))
	assert.Equal(t, 3, ledger.FindColumn(headers, "subcategoria"))
	// El orden de candidatos manda: "Monto" no está, cae en "Monto Final".
	assert.Equal(t, 4, ledger.FindColumn(headers, "Monto", "Monto Final"))
	assert.Equal(t, 0, ledger.FindColumn(headers, "Precio Total"))
}

func TestRow_GetYAmount(t *testing.T) {
	headers := []string{"Fecha", "Categoria", "Monto"}
	row := ledger.NewRow(2, headers, []string{"2026-08-01 10:00:00", "INSUMOS", "1.500,50"})

	assert.Equal(t, "INSUMOS", row.Get("Categoría"))
	assert.True(t, row.Amount("Monto").Equal(decimal.RequireFromString("1500.50")))

	// Fila corta: celdas ausentes devuelven vacío / cero, nunca pánico.
	short := ledger.NewRow(3, headers, []string{"2026-08-02 11:00:00"})
	assert.Equal(t, "", short.Get("Monto"))
	assert.True(t, short.Amount("Monto").IsZero())
}
