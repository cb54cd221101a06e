// Package wholesale maneja las ventas mayoristas: altas, señas pendientes,
// aplicación de pagos y el resumen mensual que consume el motor de balance.
package wholesale

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// Categorías de un registro mayorista.
const (
	CategorySena = "Seña" // pago parcial, queda saldo a cobrar
	CategoryPaid = "PAGO" // operación totalmente cobrada
)

const timestampLayout = "2006-01-02 15:04:05"

// Service caso de uso mayorista.
type Service struct {
	store ledger.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewService construye el caso de uso.
func NewService(store ledger.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// AddInput datos de una venta mayorista.
type AddInput struct {
	Name     string
	Product  string
	Quantity int64
	Paid     decimal.Decimal
	Total    decimal.Decimal
	Category string
	Date     time.Time // cero = ahora
}

// Added resultado del alta.
type Added struct {
	Timestamp string
	TableName string
}

// AddRecord asienta una venta mayorista en la tabla mensual de su fecha.
func (s *Service) AddRecord(in AddInput) (*Added, error) {
	if !in.Total.IsPositive() {
		return nil, fmt.Errorf("monto total no positivo: %w", domain.ErrValidation)
	}
	if in.Paid.IsNegative() {
		return nil, fmt.Errorf("monto pagado negativo: %w", domain.ErrValidation)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	table, err := s.ensureMonthlyTable(date)
	if err != nil {
		return nil, err
	}

	remaining := in.Total.Sub(in.Paid)
	timestamp := date.Format(timestampLayout)
	row := []any{timestamp, in.Name, in.Product, in.Quantity, in.Total.Round(2).String(), in.Paid.Round(2).String(), remaining.Round(2).String(), in.Category}
	if err := table.AppendRow(row); err != nil {
		return nil, err
	}
	s.log.Info().Str("tabla", table.Name()).Str("cliente", in.Name).Msg("venta mayorista registrada")
	return &Added{Timestamp: timestamp, TableName: table.Name()}, nil
}

// ensureMonthlyTable obtiene o crea la tabla del mes. Al crear una tabla nueva
// traspasa las señas impagas del mes anterior (ver carryOverSenas).
func (s *Service) ensureMonthlyTable(date time.Time) (ledger.Table, error) {
	name := ledger.MonthlyTableName(ledger.WholesaleBase, date.Year(), int(date.Month()))
	table, err := s.store.Table(name)
	if err == nil {
		return table, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	table, err = s.store.CreateTable(name, ledger.WholesaleHeaders)
	if err != nil {
		return nil, err
	}
	s.carryOverSenas(table, date)
	return table, nil
}

// carryOverSenas copia a la tabla recién creada las señas sin saldar del mes
// anterior: el total se recompone como pagado+restante, el pagado arranca en
// cero y el restante se arrastra. Un fallo acá no aborta el alta en curso.
func (s *Service) carryOverSenas(table ledger.Table, date time.Time) {
	prev := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location()).AddDate(0, 0, -1)
	prevName := ledger.MonthlyTableName(ledger.WholesaleBase, prev.Year(), int(prev.Month()))
	prevTable, err := s.store.Table(prevName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Info().Str("tabla", prevName).Msg("sin tabla del mes anterior; no se traspasan señas")
		} else {
			s.log.Error().Err(err).Str("tabla", prevName).Msg("no se pudieron leer señas del mes anterior")
		}
		return
	}
	rows, err := prevTable.Rows()
	if err != nil {
		s.log.Error().Err(err).Str("tabla", prevName).Msg("no se pudieron leer señas del mes anterior")
		return
	}
	carried := 0
	for _, row := range rows {
		if row.Get(ledger.CategoryColumn...) != CategorySena {
			continue
		}
		oldPaid := row.Amount("Monto Pagado")
		oldRemaining := row.Amount("Monto Restante")
		newRow := []any{
			s.now().Format(timestampLayout),
			row.Get("Nombre"),
			row.Get("Producto"),
			row.Get("Cantidad"),
			oldPaid.Add(oldRemaining).Round(2).String(),
			"0",
			oldRemaining.Round(2).String(),
			CategorySena,
		}
		if err := table.AppendRow(newRow); err != nil {
			s.log.Error().Err(err).Msg("error traspasando seña pendiente")
			continue
		}
		carried++
	}
	if carried > 0 {
		s.log.Info().Int("senas", carried).Str("tabla", table.Name()).Msg("señas pendientes traspasadas")
	}
}

// PendingSena una seña con saldo a cobrar, referenciada por número de fila.
type PendingSena struct {
	RowNumber int
	Name      string
	Product   string
	Quantity  int64
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// PendingSenas lista las señas del mes indicado.
func (s *Service) PendingSenas(year, month int) ([]PendingSena, error) {
	table, err := s.store.Table(ledger.MonthlyTableName(ledger.WholesaleBase, year, month))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, err
	}
	var pending []PendingSena
	for _, row := range rows {
		if row.Get(ledger.CategoryColumn...) != CategorySena {
			continue
		}
		pending = append(pending, PendingSena{
			RowNumber: row.Number,
			Name:      row.Get("Nombre"),
			Product:   row.Get("Producto"),
			Quantity:  row.Quantity("Cantidad"),
			Total:     row.Amount("Monto Total"),
			Paid:      row.Amount("Monto Pagado"),
			Remaining: row.Amount("Monto Restante"),
		})
	}
	return pending, nil
}

// ApplyPayment aplica un pago a una seña de la tabla del mes corriente.
// Rechaza sobrepagos antes de tocar la fila; al llegar a cero el restante,
// la operación pasa a categoría PAGO.
func (s *Service) ApplyPayment(rowNumber int, payment decimal.Decimal) (decimal.Decimal, error) {
	if !payment.IsPositive() {
		return decimal.Zero, fmt.Errorf("pago no positivo: %w", domain.ErrValidation)
	}
	table, err := s.ensureMonthlyTable(s.now())
	if err != nil {
		return decimal.Zero, err
	}
	headers, err := table.Headers()
	if err != nil {
		return decimal.Zero, err
	}
	paidCol := ledger.FindColumn(headers, "Monto Pagado")
	remainingCol := ledger.FindColumn(headers, "Monto Restante")
	categoryCol := ledger.FindColumn(headers, ledger.CategoryColumn...)
	if paidCol == 0 || remainingCol == 0 || categoryCol == 0 {
		return decimal.Zero, fmt.Errorf("faltan columnas de montos en %s: %w", table.Name(), domain.ErrNotFound)
	}

	rows, err := table.Rows()
	if err != nil {
		return decimal.Zero, err
	}
	var target *ledger.Row
	for i := range rows {
		if rows[i].Number == rowNumber {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return decimal.Zero, fmt.Errorf("fila %d en %s: %w", rowNumber, table.Name(), domain.ErrNotFound)
	}

	currentPaid := target.Amount("Monto Pagado")
	currentRemaining := target.Amount("Monto Restante")
	if payment.GreaterThan(currentRemaining) {
		return currentRemaining, domain.ErrOverpayment
	}
	newPaid := currentPaid.Add(payment)
	newRemaining := currentRemaining.Sub(payment)
	if err := table.UpdateCell(rowNumber, paidCol, newPaid.Round(2).String()); err != nil {
		return decimal.Zero, err
	}
	if err := table.UpdateCell(rowNumber, remainingCol, newRemaining.Round(2).String()); err != nil {
		return decimal.Zero, err
	}
	if !newRemaining.IsPositive() {
		if err := table.UpdateCell(rowNumber, categoryCol, CategoryPaid); err != nil {
			return decimal.Zero, err
		}
	}
	s.log.Info().Int("fila", rowNumber).Str("restante", newRemaining.String()).Msg("pago de seña aplicado")
	return newRemaining, nil
}

// Summary arma el resumen mayorista del mes: total efectivamente cobrado
// (Monto Pagado), acumulado por cliente y detalle por operación. Una tabla
// ausente es un mes sin actividad, no un error.
func (s *Service) Summary(year, month int) (entity.WholesaleSummary, error) {
	empty := entity.WholesaleSummary{Total: decimal.Zero, ByClient: map[string]entity.WholesaleClient{}}
	table, err := s.store.Table(ledger.MonthlyTableName(ledger.WholesaleBase, year, month))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return empty, nil
		}
		return empty, err
	}
	rows, err := table.Rows()
	if err != nil {
		return empty, err
	}

	summary := entity.WholesaleSummary{Total: decimal.Zero, ByClient: map[string]entity.WholesaleClient{}}
	for _, row := range rows {
		client := row.Get("Nombre")
		if client == "" {
			client = "Sin Nombre"
		}
		product := row.Get("Producto")
		if product == "" {
			product = "N/A"
		}
		amount := row.Amount("Monto Pagado")
		quantity := row.Quantity("Cantidad")

		summary.Total = summary.Total.Add(amount)
		summary.Count++
		summary.Details = append(summary.Details, entity.WholesaleDetail{
			Client: client, Product: product, Quantity: quantity, Amount: amount,
		})
		acc := summary.ByClient[client]
		acc.Amount = acc.Amount.Add(amount)
		acc.Quantity += quantity
		summary.ByClient[client] = acc
	}
	summary.Total = summary.Total.Round(2)
	for client, acc := range summary.ByClient {
		acc.Amount = acc.Amount.Round(2)
		summary.ByClient[client] = acc
	}
	return summary, nil
}

// WithClock fija el reloj del servicio. Para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
