package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/events"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger/ledgertest"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

func TestIsNewAndRecord_Idempotente(t *testing.T) {
	store := ledgertest.NewStore()
	gate := events.NewGate(store, logger.Nop())

	// Primera vez: nuevo. Segunda y tercera: duplicado.
	isNew, err := gate.IsNewAndRecord("123-456")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = gate.IsNewAndRecord("123-456")
	require.NoError(t, err)
	assert.False(t, isNew)

	isNew, err = gate.IsNewAndRecord("123-456")
	require.NoError(t, err)
	assert.False(t, isNew)

	// Solo quedó una fila registrada.
	assert.Equal(t, 1, store.MustTable(ledger.ProcessedEventsTable).RowCount())
}

func TestIsNewAndRecord_IDVacio(t *testing.T) {
	gate := events.NewGate(ledgertest.NewStore(), logger.Nop())
	isNew, err := gate.IsNewAndRecord("")
	assert.Error(t, err)
	assert.False(t, isNew)
}

func TestAllowChat_FailOpenSinConexion(t *testing.T) {
	store := ledgertest.NewStore()
	store.Unavailable = true
	gate := events.NewGate(store, logger.Nop())

	// Backend caído: la acción de chat se permite igual.
	assert.True(t, gate.AllowChat(events.ChatEventID(9, 42)))
}

func TestAllowWebhook_FailClosedSinConexion(t *testing.T) {
	store := ledgertest.NewStore()
	store.Unavailable = true
	gate := events.NewGate(store, logger.Nop())

	// Backend caído: el webhook no se procesa.
	allowed, err := gate.AllowWebhook(events.WebhookEventID(777, "order/paid", 100))
	assert.Error(t, err)
	assert.False(t, allowed)
}

func TestEventIDs(t *testing.T) {
	assert.Equal(t, "9-42", events.ChatEventID(9, 42))
	assert.Equal(t, "777-order/paid-100", events.WebhookEventID(777, "order/paid", 100))
}

func TestLogWebhook_RequiereTablaExistente(t *testing.T) {
	store := ledgertest.NewStore()
	gate := events.NewGate(store, logger.Nop())

	// Sin la tabla de auditoría el log falla: no se auto-crea.
	assert.Error(t, gate.LogWebhook("777-order/paid-100", "order/paid", 100))

	store.Seed(ledger.WebhookLogsTable, ledger.WebhookLogsHeaders)
	require.NoError(t, gate.LogWebhook("777-order/paid-100", "order/paid", 100))
	assert.Equal(t, 1, store.MustTable(ledger.WebhookLogsTable).RowCount())
}
