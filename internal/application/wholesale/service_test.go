package wholesale_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/wholesale"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger/ledgertest"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddRecord_CreaTablaMensual(t *testing.T) {
	store := ledgertest.NewStore()
	svc := wholesale.NewService(store, logger.Nop()).
		WithClock(fixedClock(time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)))

	added, err := svc.AddRecord(wholesale.AddInput{
		Name: "Club Norte", Product: "Remeras", Quantity: 50,
		Paid: dec("30000"), Total: dec("50000"), Category: wholesale.CategorySena,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mayoristas Agosto 2026", added.TableName)
	assert.Equal(t, 1, store.MustTable("Mayoristas Agosto 2026").RowCount())
}

func TestRollover_SenaImpagaPasaAlMesSiguiente(t *testing.T) {
	store := ledgertest.NewStore()
	// Mes M: seña con Total=50000, Pagado=30000, Restante=20000.
	store.Seed("Mayoristas Julio 2026", ledger.WholesaleHeaders,
		[]any{"2026-07-10 09:00:00", "Club Norte", "Remeras", 50, "50000", "30000", "20000", "Seña"},
		[]any{"2026-07-12 09:00:00", "Tienda Sur", "Gorras", 20, "20000", "20000", "0", "PAGO"},
	)
	svc := wholesale.NewService(store, logger.Nop()).
		WithClock(fixedClock(time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)))

	// Primera escritura de agosto crea la tabla y dispara el traspaso.
	_, err := svc.AddRecord(wholesale.AddInput{
		Name: "Nuevo Cliente", Product: "Buzos", Quantity: 10,
		Paid: dec("10000"), Total: dec("10000"), Category: wholesale.CategoryPaid,
	})
	require.NoError(t, err)

	pending, err := svc.PendingSenas(2026, 8)
	require.NoError(t, err)
	require.Len(t, pending, 1, "solo la seña impaga debe traspasarse")

	sena := pending[0]
	assert.Equal(t, "Club Norte", sena.Name)
	assert.True(t, sena.Total.Equal(dec("50000")), "total recompuesto: pagado+restante")
	assert.True(t, sena.Paid.IsZero(), "el pagado arranca en cero en el mes nuevo")
	assert.True(t, sena.Remaining.Equal(dec("20000")), "el restante se arrastra")
}

func TestApplyPayment_RechazaSobrepago(t *testing.T) {
	store := ledgertest.NewStore()
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	store.Seed("Mayoristas Agosto 2026", ledger.WholesaleHeaders,
		[]any{"2026-08-10 09:00:00", "Club Norte", "Remeras", 50, "50000", "30000", "20000", "Seña"},
	)
	svc := wholesale.NewService(store, logger.Nop()).WithClock(fixedClock(now))

	_, err := svc.ApplyPayment(2, dec("25000"))
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	// La fila no debe haber sido tocada.
	table := store.MustTable("Mayoristas Agosto 2026")
	assert.Equal(t, "30000", table.Cell(2, 6))
	assert.Equal(t, "20000", table.Cell(2, 7))
}

func TestApplyPayment_SaldaYPasaAPago(t *testing.T) {
	store := ledgertest.NewStore()
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	store.Seed("Mayoristas Agosto 2026", ledger.WholesaleHeaders,
		[]any{"2026-08-10 09:00:00", "Club Norte", "Remeras", 50, "50000", "30000", "20000", "Seña"},
	)
	svc := wholesale.NewService(store, logger.Nop()).WithClock(fixedClock(now))

	remaining, err := svc.ApplyPayment(2, dec("5000"))
	require.NoError(t, err)
	assert.True(t, remaining.Equal(dec("15000")))

	remaining, err = svc.ApplyPayment(2, dec("15000"))
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())

	table := store.MustTable("Mayoristas Agosto 2026")
	assert.Equal(t, "50000", table.Cell(2, 6), "pagado acumulado")
	assert.Equal(t, "0", table.Cell(2, 7), "restante en cero")
	assert.Equal(t, wholesale.CategoryPaid, table.Cell(2, 8), "categoría pasa a PAGO al saldarse")
}

func TestSummary_TotalizaLoCobrado(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed("Mayoristas Agosto 2026", ledger.WholesaleHeaders,
		[]any{"2026-08-10 09:00:00", "Club Norte", "Remeras", 50, "50000", "30000", "20000", "Seña"},
		[]any{"2026-08-11 09:00:00", "Club Norte", "Gorras", 10, "10000", "10000", "0", "PAGO"},
		[]any{"2026-08-12 09:00:00", "Tienda Sur", "Buzos", 5, "25000", "25000", "0", "PAGO"},
	)
	svc := wholesale.NewService(store, logger.Nop())

	summary, err := svc.Summary(2026, 8)
	require.NoError(t, err)
	assert.True(t, summary.Total.Equal(dec("65000")), "suma lo cobrado, no lo comprometido")
	assert.Equal(t, 3, summary.Count)
	assert.Len(t, summary.Details, 3)

	norte := summary.ByClient["Club Norte"]
	assert.True(t, norte.Amount.Equal(dec("40000")))
	assert.Equal(t, int64(60), norte.Quantity)
}

func TestSummary_MesSinTablaEsCero(t *testing.T) {
	svc := wholesale.NewService(ledgertest.NewStore(), logger.Nop())
	summary, err := svc.Summary(2026, 1)
	require.NoError(t, err)
	assert.True(t, summary.Total.IsZero())
	assert.Zero(t, summary.Count)
}

func TestSummary_SinConexionEsFalloDuro(t *testing.T) {
	store := ledgertest.NewStore()
	store.Unavailable = true
	svc := wholesale.NewService(store, logger.Nop())
	_, err := svc.Summary(2026, 8)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}
