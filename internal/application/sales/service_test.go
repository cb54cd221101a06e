package sales_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/products"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/sales"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger/ledgertest"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakePusher struct {
	calls []int64
	err   error
}

func (f *fakePusher) PushStock(productID, variantID, newLevel int64) error {
	f.calls = append(f.calls, newLevel)
	return f.err
}

func testVariant() entity.Variant {
	return entity.Variant{
		RowNumber:    2,
		Name:         "Remera Lisa",
		ProductID:    101,
		VariantID:    1002,
		OptionValues: [3]string{"Rojo", "M", ""},
		Category:     "Remeras",
		Stock:        10,
		UnitPrice:    dec("8000"),
		DiscountPct:  dec("0"),
		Discount:     dec("0"),
		FinalPrice:   dec("8000"),
	}
}

func newSalesService(store *ledgertest.Store, pusher sales.StockPusher, now time.Time) *sales.Service {
	prods := products.NewService(store, nil, logger.Nop())
	return sales.NewService(store, prods, pusher, logger.Nop()).
		WithClock(func() time.Time { return now })
}

func TestAdd_AsientaVentaYDescuentaStock(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed(ledger.ProductsTable, ledger.ProductsHeaders,
		[]any{"Remera Lisa", 101, 1002, "", "Color", "Rojo", "Talle", "M", "", "", "Remeras", 10, "8000", "0", "0", "8000"},
	)
	pusher := &fakePusher{}
	svc := newSalesService(store, pusher, time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))

	result, err := svc.Add(sales.SaleInput{Variant: testVariant(), Quantity: 3, Client: "Juan"})
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.True(t, result.Total.Equal(dec("24000")))
	assert.Equal(t, int64(7), result.RemainingStock)
	assert.True(t, result.StockUpdated)

	ventas := store.MustTable("Ventas Agosto 2026")
	require.Equal(t, 1, ventas.RowCount())
	assert.Equal(t, "Remera Lisa", ventas.Cell(2, 2))
	assert.Equal(t, "Rojo, M", ventas.Cell(2, 3))
	assert.Equal(t, "Juan", ventas.Cell(2, 4))
	assert.Equal(t, "24000", ventas.Cell(2, 10))

	assert.Equal(t, "7", store.MustTable(ledger.ProductsTable).Cell(2, 12), "stock descontado en planilla")
	assert.Equal(t, []int64{7}, pusher.calls, "stock empujado a la tienda")
}

func TestAdd_FalloDeStockNoAnulaLaVenta(t *testing.T) {
	// Sin tabla Productos: el descuento de stock falla, la venta queda.
	store := ledgertest.NewStore()
	svc := newSalesService(store, nil, time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))

	result, err := svc.Add(sales.SaleInput{Variant: testVariant(), Quantity: 2, Client: "Ana"})
	require.NoError(t, err, "la plata fue real: la venta se asienta igual")
	assert.Contains(t, result.Warnings, "stock en planilla no actualizado")
	assert.False(t, result.StockUpdated)
	assert.Equal(t, 1, store.MustTable("Ventas Agosto 2026").RowCount())
}

func TestAdd_FalloDelPusherEsWarning(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed(ledger.ProductsTable, ledger.ProductsHeaders,
		[]any{"Remera Lisa", 101, 1002, "", "Color", "Rojo", "Talle", "M", "", "", "Remeras", 10, "8000", "0", "0", "8000"},
	)
	pusher := &fakePusher{err: errors.New("timeout")}
	svc := newSalesService(store, pusher, time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))

	result, err := svc.Add(sales.SaleInput{Variant: testVariant(), Quantity: 1, Client: "Ana"})
	require.NoError(t, err)
	assert.True(t, result.StockUpdated, "la planilla sí se actualizó")
	assert.Contains(t, result.Warnings, "stock no empujado a la tienda")
}

func TestAdd_ValidaEntrada(t *testing.T) {
	svc := newSalesService(ledgertest.NewStore(), nil, time.Now())

	_, err := svc.Add(sales.SaleInput{Variant: testVariant(), Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	variant := testVariant()
	variant.FinalPrice = decimal.Zero
	_, err = svc.Add(sales.SaleInput{Variant: variant, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAddOnline_AsientaSinTocarStock(t *testing.T) {
	store := ledgertest.NewStore()
	store.Seed(ledger.ProductsTable, ledger.ProductsHeaders,
		[]any{"Remera Lisa", 101, 1002, "", "Color", "Rojo", "Talle", "M", "", "", "Remeras", 10, "8000", "0", "0", "8000"},
	)
	svc := newSalesService(store, nil, time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))

	result, err := svc.AddOnline(sales.OnlineSaleInput{
		Description: "Remera Lisa, Gorra Trucker",
		Client:      "Cliente TiendaNube",
		Quantity:    3,
		Total:       dec("21500.50"),
	})
	require.NoError(t, err)
	assert.True(t, result.Total.Equal(dec("21500.5")))

	ventas := store.MustTable("Ventas Agosto 2026")
	require.Equal(t, 1, ventas.RowCount())
	assert.Equal(t, sales.OnlineCategory, ventas.Cell(2, 5))
	assert.Equal(t, "21500.5", ventas.Cell(2, 10))
	assert.Equal(t, "10", store.MustTable(ledger.ProductsTable).Cell(2, 12), "el stock local no se toca")
}
