package expenses_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/expenses"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger/ledgertest"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAdd_AsientaEnLaTablaDelMes(t *testing.T) {
	store := ledgertest.NewStore()
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	svc := expenses.NewService(store, logger.Nop()).WithClock(func() time.Time { return now })

	added, err := svc.Add(expenses.AddInput{
		Category:    "SERVICIOS",
		Subcategory: "Luz",
		Description: "Factura agosto",
		Amount:      dec("32500.75"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Gastos Agosto 2026", added.TableName)

	table := store.MustTable("Gastos Agosto 2026")
	require.Equal(t, 1, table.RowCount())
	assert.Equal(t, "2026-08-15 10:00:00", table.Cell(2, 1))
	assert.Equal(t, "SERVICIOS", table.Cell(2, 2))
	assert.Equal(t, "Luz", table.Cell(2, 3))
	assert.Equal(t, "32500.75", table.Cell(2, 6))
}

func TestAdd_FechaExplicitaElijeOtraTabla(t *testing.T) {
	store := ledgertest.NewStore()
	svc := expenses.NewService(store, logger.Nop()).WithClock(func() time.Time {
		return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	})

	added, err := svc.Add(expenses.AddInput{
		Category: "CHEQUES",
		Amount:   dec("106200"),
		Date:     time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "Gastos Septiembre 2026", added.TableName, "la fecha del gasto manda sobre el reloj")
}

func TestAdd_ValidaEntrada(t *testing.T) {
	store := ledgertest.NewStore()
	svc := expenses.NewService(store, logger.Nop())

	_, err := svc.Add(expenses.AddInput{Category: "SERVICIOS", Amount: dec("0")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Add(expenses.AddInput{Amount: dec("100")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
