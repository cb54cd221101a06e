package debts_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/debts"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger/ledgertest"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T) (*debts.Service, *ledgertest.Store) {
	t.Helper()
	store := ledgertest.NewStore()
	svc := debts.NewService(store, logger.Nop()).
		WithClock(func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) })
	return svc, store
}

// Ciclo de vida completo: alta → pago parcial → pago final.
func TestDebtLifecycle(t *testing.T) {
	svc, _ := newService(t)

	debt, err := svc.Create("Proveedor Telas", dec("100000"))
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusActive, debt.Status)
	assert.True(t, debt.PendingBalance.Equal(dec("100000")))

	debt, err = svc.Pay(debt.ID, dec("30000"))
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusActive, debt.Status)
	assert.True(t, debt.PendingBalance.Equal(dec("70000")))

	debt, err = svc.Pay(debt.ID, dec("70000"))
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusSettled, debt.Status)
	assert.True(t, debt.PendingBalance.IsZero())

	// Saldada: ya no aparece entre las activas.
	active, err := svc.Active()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestPay_RechazaSobrepago(t *testing.T) {
	svc, _ := newService(t)
	debt, err := svc.Create("Proveedor Telas", dec("100000"))
	require.NoError(t, err)

	_, err = svc.Pay(debt.ID, dec("100001"))
	assert.ErrorIs(t, err, domain.ErrOverpayment)

	// El rechazo ocurre antes de mutar: el saldo queda intacto.
	active, err := svc.Active()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].PendingBalance.Equal(dec("100000")))
}

func TestPay_DeudaInexistente(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Pay("DEUDA-0", dec("1000"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIncrease_ReactivaDeudaSaldada(t *testing.T) {
	svc, _ := newService(t)
	debt, err := svc.Create("Proveedor Avíos", dec("5000"))
	require.NoError(t, err)

	_, err = svc.Pay(debt.ID, dec("5000"))
	require.NoError(t, err)

	increased, err := svc.Increase(debt.ID, dec("8000"))
	require.NoError(t, err)
	assert.Equal(t, entity.DebtStatusActive, increased.Status)
	assert.True(t, increased.PendingBalance.Equal(dec("8000")))
	assert.True(t, increased.InitialAmount.Equal(dec("13000")))
}

func TestCreate_Validaciones(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create("", dec("1000"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create("Alguien", dec("0"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create("Alguien", dec("-10"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
