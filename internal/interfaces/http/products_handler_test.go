package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/products"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	apphttp "github.com/MiltonKlun/Pombot-PG-Original/internal/interfaces/http"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger/ledgertest"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	variants []entity.Variant
	err      error
}

func (f *fakeCatalog) ListVariants() ([]entity.Variant, error) { return f.variants, f.err }

type fakeSweeper struct {
	runs int
	err  error
}

func (f *fakeSweeper) RunSweepNow() error {
	f.runs++
	return f.err
}

type fakeStock struct {
	stock int64
	ok    bool
}

func (f *fakeStock) Stock(productID, variantID int64) (int64, bool) { return f.stock, f.ok }

func buildOpsApp(prods *products.Service, stock apphttp.StockChecker, sweeper apphttp.SweepRunner) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Webhook:    &apphttp.WebhookHandler{},
		Balance:    &apphttp.BalanceHandler{},
		Products:   apphttp.NewProductsHandler(prods, stock, logger.Nop()),
		Reconciler: apphttp.NewReconcilerHandler(sweeper, logger.Nop()),
	})
	return app
}

func post(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestProductsSync_ReescribeLaTabla(t *testing.T) {
	store := ledgertest.NewStore()
	catalog := &fakeCatalog{variants: []entity.Variant{
		{Name: "Remera Lisa", ProductID: 101, VariantID: 1001, Category: "Remeras",
			Stock: 5, UnitPrice: price("10000"), FinalPrice: price("8000"),
			Discount: price("2000"), DiscountPct: price("20")},
		{Name: "Gorra Trucker", ProductID: 102, VariantID: 2001, Category: "Gorras",
			Stock: 12, UnitPrice: price("9500"), FinalPrice: price("9500")},
	}}
	prods := products.NewService(store, catalog, logger.Nop())
	app := buildOpsApp(prods, nil, nil)

	resp := post(t, app, "/api/products/sync")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body["synced"])
	assert.Equal(t, 2, store.MustTable(ledger.ProductsTable).RowCount())
}

func TestProductsSync_SinCatalogoConfigurado(t *testing.T) {
	prods := products.NewService(ledgertest.NewStore(), nil, logger.Nop())
	app := buildOpsApp(prods, nil, nil)

	resp := post(t, app, "/api/products/sync")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductsStock_ConsultaLaTienda(t *testing.T) {
	prods := products.NewService(ledgertest.NewStore(), nil, logger.Nop())
	app := buildOpsApp(prods, &fakeStock{stock: 7, ok: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/stock?product_id=101&variant_id=1001", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(7), body["stock"])
}

func TestProductsStock_ValidaParametrosYTiendaCaida(t *testing.T) {
	prods := products.NewService(ledgertest.NewStore(), nil, logger.Nop())
	app := buildOpsApp(prods, &fakeStock{ok: false}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/stock", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/products/stock?product_id=101&variant_id=1001", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestReconciliationSweep_DisparaElBarrido(t *testing.T) {
	prods := products.NewService(ledgertest.NewStore(), nil, logger.Nop())
	sweeper := &fakeSweeper{}
	app := buildOpsApp(prods, nil, sweeper)

	resp := post(t, app, "/api/reconciliation/sweep")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sweeper.runs)
}

func TestReconciliationSweep_SinBarridoConfigurado(t *testing.T) {
	prods := products.NewService(ledgertest.NewStore(), nil, logger.Nop())
	app := buildOpsApp(prods, nil, nil)

	resp := post(t, app, "/api/reconciliation/sweep")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
