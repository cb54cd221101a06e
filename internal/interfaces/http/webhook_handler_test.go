package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/events"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/products"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/sales"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/infrastructure/tiendanube"
	apphttp "github.com/MiltonKlun/Pombot-PG-Original/internal/interfaces/http"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger/ledgertest"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrders struct {
	order *tiendanube.Order
	err   error
}

func (f *fakeOrders) FetchOrder(orderID int64) (*tiendanube.Order, error) {
	return f.order, f.err
}

func buildWebhookApp(store *ledgertest.Store, orders apphttp.OrderFetcher) *fiber.App {
	now := func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) }
	gate := events.NewGate(store, logger.Nop()).WithClock(now)
	prods := products.NewService(store, nil, logger.Nop())
	salesSvc := sales.NewService(store, prods, nil, logger.Nop()).WithClock(now)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Webhook:    apphttp.NewWebhookHandler(gate, orders, salesSvc, logger.Nop()),
		Balance:    &apphttp.BalanceHandler{},
		Products:   apphttp.NewProductsHandler(prods, nil, logger.Nop()),
		Reconciler: apphttp.NewReconcilerHandler(nil, logger.Nop()),
	})
	return app
}

func postWebhook(t *testing.T, app *fiber.App, payload map[string]any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/tiendanube", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func paidOrder() *tiendanube.Order {
	return &tiendanube.Order{
		ID:       9001,
		Customer: tiendanube.OrderCustomer{Name: "Juan Pérez"},
		Products: []tiendanube.OrderProduct{
			{Name: "Remera Lisa", Quantity: 2},
			{Name: "Gorra Trucker", Quantity: 1},
		},
		Transactions: []tiendanube.OrderTransaction{{CapturedAmount: "21500.50"}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestWebhook_OrdenPagaRegistraVentaOnline(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed(ledger.WebhookLogsTable, ledger.WebhookLogsHeaders)
	app := buildWebhookApp(store, &fakeOrders{order: paidOrder()})

	resp := postWebhook(t, app, map[string]any{"store_id": 555, "event": "order/paid", "id": 9001})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ventas := store.MustTable("Ventas Agosto 2026")
	require.Equal(t, 1, ventas.RowCount())
	assert.Equal(t, "Remera Lisa, Gorra Trucker", ventas.Cell(2, 2))
	assert.Equal(t, "Juan Pérez", ventas.Cell(2, 4))
	assert.Equal(t, sales.OnlineCategory, ventas.Cell(2, 5))
	assert.Equal(t, "3", ventas.Cell(2, 6), "cantidad total de la orden")
	assert.Equal(t, "21500.5", ventas.Cell(2, 10))

	assert.Equal(t, 1, store.MustTable(ledger.WebhookLogsTable).RowCount(), "el webhook queda auditado")
	assert.Equal(t, 1, store.MustTable(ledger.ProcessedEventsTable).RowCount())
}

func TestWebhook_DuplicadoNoReprocesa(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed(ledger.WebhookLogsTable, ledger.WebhookLogsHeaders)
	app := buildWebhookApp(store, &fakeOrders{order: paidOrder()})
	payload := map[string]any{"store_id": 555, "event": "order/paid", "id": 9001}

	resp := postWebhook(t, app, payload)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postWebhook(t, app, payload)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "duplicado", body["status"])
	assert.Equal(t, 1, store.MustTable("Ventas Agosto 2026").RowCount(), "la venta no se duplica")
}

func TestWebhook_SinRegistroDeEventosAborta(t *testing.T) {
	// Fail-closed: si el registro de idempotencia está caído, el webhook no
	// debe generar ningún asiento.
	store := ledgertest.NewStore()
	store.Unavailable = true
	app := buildWebhookApp(store, &fakeOrders{order: paidOrder()})

	resp := postWebhook(t, app, map[string]any{"store_id": 555, "event": "order/paid", "id": 9001})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebhook_EventoNoManejadoSeIgnora(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed(ledger.WebhookLogsTable, ledger.WebhookLogsHeaders)
	app := buildWebhookApp(store, &fakeOrders{})

	resp := postWebhook(t, app, map[string]any{"store_id": 555, "event": "order/cancelled", "id": 9002})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ignorado", body["status"])
}

func TestWebhook_OrdenSinTransaccionesSeOmite(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed(ledger.WebhookLogsTable, ledger.WebhookLogsHeaders)
	order := paidOrder()
	order.Transactions = nil
	app := buildWebhookApp(store, &fakeOrders{order: order})

	resp := postWebhook(t, app, map[string]any{"store_id": 555, "event": "order/paid", "id": 9001})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := store.Table("Ventas Agosto 2026")
	assert.Error(t, err, "sin transacciones no se asienta nada")
}

func TestWebhook_CuerpoInvalido(t *testing.T) {
	store := ledgertest.NewStore()
	app := buildWebhookApp(store, &fakeOrders{})

	resp := postWebhook(t, app, map[string]any{"event": "order/paid"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
