// Package sales registra ventas minoristas: la fila en la tabla mensual de
// Ventas, el descuento de stock en planilla y el empuje de stock a la tienda
// online.
package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/products"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

const timestampLayout = "2006-01-02 15:04:05"

// OnlineCategory categoría fija de las ventas que entran por webhook.
const OnlineCategory = "TiendaNube Venta Online"

// StockPusher empuja niveles de stock a la tienda online.
type StockPusher interface {
	PushStock(productID, variantID, newLevel int64) error
}

// Service caso de uso de ventas.
type Service struct {
	store    ledger.Store
	products *products.Service
	pusher   StockPusher
	log      *logger.Logger
	now      func() time.Time
}

// NewService construye el caso de uso. pusher puede ser nil si la tienda
// online no está configurada; en ese caso el stock solo se toca en planilla.
func NewService(store ledger.Store, prods *products.Service, pusher StockPusher, log *logger.Logger) *Service {
	return &Service{store: store, products: prods, pusher: pusher, log: log, now: time.Now}
}

// SaleInput es una venta de mostrador sobre una variante resuelta del catálogo.
type SaleInput struct {
	Variant  entity.Variant
	Quantity int64
	Client   string
}

// Result resumen de la venta registrada. Warnings acumula los pasos no
// críticos que fallaron (stock en planilla o en la tienda); la venta en sí
// ya quedó asentada cuando hay warnings.
type Result struct {
	Timestamp      string
	TableName      string
	Product        string
	VariantDesc    string
	Client         string
	Quantity       int64
	Total          decimal.Decimal
	RemainingStock int64
	StockUpdated   bool
	Warnings       []string
}

// Add asienta la venta y después intenta descontar stock. El asiento manda:
// si el descuento de stock falla, la venta queda registrada igual (la plata
// fue real) y el fallo se devuelve como warning, nunca como rollback.
func (s *Service) Add(in SaleInput) (*Result, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("cantidad no positiva: %w", domain.ErrValidation)
	}
	if !in.Variant.FinalPrice.IsPositive() {
		return nil, fmt.Errorf("precio final no positivo: %w", domain.ErrValidation)
	}

	date := s.now()
	table, err := ledger.EnsureMonthly(s.store, ledger.SalesBase, ledger.SalesHeaders, date)
	if err != nil {
		return nil, err
	}
	total := in.Variant.FinalPrice.Mul(decimal.NewFromInt(in.Quantity))
	timestamp := date.Format(timestampLayout)
	row := []any{
		timestamp,
		in.Variant.Name,
		in.Variant.Description(),
		in.Client,
		in.Variant.Category,
		in.Quantity,
		in.Variant.UnitPrice.Round(2).String(),
		in.Variant.DiscountPct.Round(2).String(),
		in.Variant.Discount.Round(2).String(),
		total.Round(2).String(),
	}
	if err := table.AppendRow(row); err != nil {
		return nil, err
	}
	s.log.Info().Str("tabla", table.Name()).Str("producto", in.Variant.Name).
		Int64("cantidad", in.Quantity).Msg("venta registrada")

	result := &Result{
		Timestamp:   timestamp,
		TableName:   table.Name(),
		Product:     in.Variant.Name,
		VariantDesc: in.Variant.Description(),
		Client:      in.Client,
		Quantity:    in.Quantity,
		Total:       total.Round(2),
	}
	s.settleStock(in, result)
	return result, nil
}

// settleStock descuenta el stock en planilla y lo empuja a la tienda. Todo
// fallo acá es un warning sobre el resultado, no un error de la venta.
func (s *Service) settleStock(in SaleInput, result *Result) {
	newLevel := in.Variant.Stock - in.Quantity
	result.RemainingStock = newLevel

	if in.Variant.RowNumber <= 0 {
		result.Warnings = append(result.Warnings, "venta sin fila de catálogo; stock en planilla sin tocar")
		return
	}
	if err := s.products.UpdateStock(in.Variant.RowNumber, newLevel); err != nil {
		s.log.Warn().Err(err).Int("fila", in.Variant.RowNumber).Msg("venta asentada pero el stock en planilla no se pudo actualizar")
		result.Warnings = append(result.Warnings, "stock en planilla no actualizado")
	} else {
		result.StockUpdated = true
		s.products.Invalidate()
	}

	if s.pusher == nil {
		return
	}
	if in.Variant.ProductID == 0 || in.Variant.VariantID == 0 {
		s.log.Warn().Str("producto", in.Variant.Name).Msg("variante sin ids de tienda; no se empuja stock")
		result.Warnings = append(result.Warnings, "variante sin ids de tienda")
		return
	}
	if err := s.pusher.PushStock(in.Variant.ProductID, in.Variant.VariantID, newLevel); err != nil {
		s.log.Warn().Err(err).Int64("variante", in.Variant.VariantID).Msg("no se pudo empujar el stock a la tienda")
		result.Warnings = append(result.Warnings, "stock no empujado a la tienda")
	}
}

// OnlineSaleInput es una venta que entró por webhook de la tienda: una sola
// fila por orden, sin variante de catálogo ni movimiento de stock local.
type OnlineSaleInput struct {
	Description string
	Client      string
	Quantity    int64
	Total       decimal.Decimal
	Date        time.Time // cero = ahora
}

// AddOnline asienta una venta online y descarta el caché de productos para
// que la próxima consulta de stock relea la planilla.
func (s *Service) AddOnline(in OnlineSaleInput) (*Result, error) {
	if !in.Total.IsPositive() {
		return nil, fmt.Errorf("total de venta online no positivo: %w", domain.ErrValidation)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	table, err := ledger.EnsureMonthly(s.store, ledger.SalesBase, ledger.SalesHeaders, date)
	if err != nil {
		return nil, err
	}
	timestamp := date.Format(timestampLayout)
	row := []any{
		timestamp,
		in.Description,
		"",
		in.Client,
		OnlineCategory,
		in.Quantity,
		in.Total.Round(2).String(),
		"0",
		"0",
		in.Total.Round(2).String(),
	}
	if err := table.AppendRow(row); err != nil {
		return nil, err
	}
	s.products.Invalidate()
	s.log.Info().Str("tabla", table.Name()).Str("cliente", in.Client).
		Str("total", in.Total.String()).Msg("venta online registrada")
	return &Result{
		Timestamp: timestamp,
		TableName: table.Name(),
		Product:   in.Description,
		Client:    in.Client,
		Quantity:  in.Quantity,
		Total:     in.Total.Round(2),
	}, nil
}

// WithClock fija el reloj del servicio. Para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
