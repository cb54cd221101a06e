// Package reconciler administra el ciclo de vida de los instrumentos
// diferidos (cheques emitidos y pagos futuros a cobrar): alta, maduración
// automática por fecha, asiento en el libro al día del vencimiento y alertas
// de próximos vencimientos.
package reconciler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/expenses"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/wholesale"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// Service conciliador de instrumentos diferidos.
type Service struct {
	store     ledger.Store
	expenses  *expenses.Service
	wholesale *wholesale.Service
	log       *logger.Logger
	now       func() time.Time
}

// NewService construye el conciliador.
func NewService(store ledger.Store, exp *expenses.Service, ws *wholesale.Service, log *logger.Logger) *Service {
	return &Service{store: store, expenses: exp, wholesale: ws, log: log, now: time.Now}
}

// ── Altas ─────────────────────────────────────────────────────────────────────

// AddCheck emite un cheque. Impuesto (1.2%) y monto final se calculan acá,
// no en la conciliación.
func (s *Service) AddCheck(counterparty string, initial, commission decimal.Decimal, dueDate string) (*entity.Check, error) {
	if err := validateInstrument(counterparty, initial, commission, dueDate); err != nil {
		return nil, err
	}
	table, err := ledger.EnsureTable(s.store, ledger.ChecksTable, ledger.ChecksHeaders)
	if err != nil {
		return nil, err
	}
	check := entity.NewCheck(counterparty, initial, commission, dueDate, s.now())
	row := []any{
		check.ID, check.DueDate, check.Counterparty,
		check.InitialAmount.Round(2).String(), check.Tax.String(), check.Commission.Round(2).String(),
		check.FinalAmount.String(), check.Status,
	}
	if err := table.AppendRow(row); err != nil {
		return nil, err
	}
	s.log.Info().Str("cheque", check.ID).Str("vence", dueDate).Msg("cheque emitido")
	return check, nil
}

// AddFuturePayment registra un pago futuro a recibir.
func (s *Service) AddFuturePayment(counterparty, product string, quantity int64, initial, commission decimal.Decimal, dueDate string) (*entity.FuturePayment, error) {
	if err := validateInstrument(counterparty, initial, commission, dueDate); err != nil {
		return nil, err
	}
	table, err := ledger.EnsureTable(s.store, ledger.FuturePaymentsTable, ledger.FuturePaymentsHeaders)
	if err != nil {
		return nil, err
	}
	payment := entity.NewFuturePayment(counterparty, product, quantity, initial, commission, dueDate, s.now())
	row := []any{
		payment.ID, payment.DueDate, payment.Counterparty, payment.Product, payment.Quantity,
		payment.InitialAmount.Round(2).String(), payment.Commission.Round(2).String(),
		payment.FinalAmount.String(), payment.Status,
	}
	if err := table.AppendRow(row); err != nil {
		return nil, err
	}
	s.log.Info().Str("pago_futuro", payment.ID).Str("vence", dueDate).Msg("pago futuro registrado")
	return payment, nil
}

func validateInstrument(counterparty string, initial, commission decimal.Decimal, dueDate string) error {
	if counterparty == "" {
		return fmt.Errorf("entidad requerida: %w", domain.ErrValidation)
	}
	if !initial.IsPositive() {
		return fmt.Errorf("monto inicial no positivo: %w", domain.ErrValidation)
	}
	if commission.IsNegative() {
		return fmt.Errorf("comisión negativa: %w", domain.ErrValidation)
	}
	if _, err := time.Parse(entity.DueDateLayout, dueDate); err != nil {
		return fmt.Errorf("fecha de cobro inválida %q: %w", dueDate, domain.ErrValidation)
	}
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// PendingChecks lista los cheques en estado Pendiente.
func (s *Service) PendingChecks() ([]entity.Check, error) {
	rows, err := s.pendingRows(ledger.ChecksTable, ledger.ChecksHeaders)
	if err != nil {
		return nil, err
	}
	checks := make([]entity.Check, 0, len(rows))
	for _, row := range rows {
		checks = append(checks, entity.Check{
			ID:            row.Get("ID"),
			DueDate:       row.Get("Fecha Cobro"),
			Counterparty:  row.Get("Entidad"),
			InitialAmount: row.Amount("Monto Inicial"),
			Tax:           row.Amount("Impuesto"),
			Commission:    row.Amount("Comision"),
			FinalAmount:   row.Amount("Monto Final"),
			Status:        row.Get("Estado"),
		})
	}
	return checks, nil
}

// PendingFuturePayments lista los pagos futuros en estado Pendiente.
func (s *Service) PendingFuturePayments() ([]entity.FuturePayment, error) {
	rows, err := s.pendingRows(ledger.FuturePaymentsTable, ledger.FuturePaymentsHeaders)
	if err != nil {
		return nil, err
	}
	payments := make([]entity.FuturePayment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, entity.FuturePayment{
			ID:            row.Get("ID"),
			DueDate:       row.Get("Fecha Cobro"),
			Counterparty:  row.Get("Entidad"),
			Product:       row.Get("Producto"),
			Quantity:      row.Quantity("Cantidad"),
			InitialAmount: row.Amount("Monto Inicial"),
			Commission:    row.Amount("Comision"),
			FinalAmount:   row.Amount("Monto Final"),
			Status:        row.Get("Estado"),
		})
	}
	return payments, nil
}

func (s *Service) pendingRows(tableName string, headers []string) ([]ledger.Row, error) {
	table, err := ledger.EnsureTable(s.store, tableName, headers)
	if err != nil {
		return nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, err
	}
	var pending []ledger.Row
	for _, row := range rows {
		if row.Get("Estado") == entity.InstrumentPending {
			pending = append(pending, row)
		}
	}
	return pending, nil
}

// ── Barrido diario ────────────────────────────────────────────────────────────

// MatureOverdue recorre Cheques y Pagos Futuros y pasa a PAGO toda fila
// Pendiente cuya fecha de cobro ya llegó. Idempotente: solo toca filas
// Pendiente. Fechas imparseables se saltean con log, sin abortar el barrido.
func (s *Service) MatureOverdue() (int, error) {
	matured := 0
	var firstErr error
	for _, tableName := range []string{ledger.ChecksTable, ledger.FuturePaymentsTable} {
		n, err := s.matureTable(tableName)
		matured += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.log.Info().Int("maduradas", matured).Msg("actualización de estados de instrumentos finalizada")
	return matured, firstErr
}

func (s *Service) matureTable(tableName string) (int, error) {
	table, err := s.store.Table(tableName)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	headers, err := table.Headers()
	if err != nil {
		return 0, err
	}
	statusCol := ledger.FindColumn(headers, "Estado")
	if statusCol == 0 {
		return 0, fmt.Errorf("columna Estado ausente en %s: %w", tableName, domain.ErrNotFound)
	}
	rows, err := table.Rows()
	if err != nil {
		return 0, err
	}

	matured := 0
	for _, row := range rows {
		if row.Get("Estado") != entity.InstrumentPending {
			continue
		}
		dueStr := row.Get("Fecha Cobro")
		// La fecha se interpreta en la zona del reloj del servicio; parsearla
		// en UTC correría el vencimiento un día cerca de la medianoche local.
		due, err := time.ParseInLocation(entity.DueDateLayout, dueStr, s.now().Location())
		if err != nil {
			s.log.Warn().Str("tabla", tableName).Int("fila", row.Number).Str("fecha", dueStr).
				Msg("fecha de cobro imparseable; fila salteada")
			continue
		}
		if !due.Before(s.now()) {
			continue
		}
		if err := table.UpdateCell(row.Number, statusCol, entity.InstrumentDue); err != nil {
			s.log.Error().Err(err).Str("tabla", tableName).Int("fila", row.Number).
				Msg("no se pudo madurar el instrumento")
			continue
		}
		matured++
	}
	return matured, nil
}

// Conciliation un instrumento asentado en el libro por el barrido.
type Conciliation struct {
	Kind         string // "cheque" | "pago_futuro"
	ID           string
	Counterparty string
	Product      string
	Quantity     int64
	Amount       decimal.Decimal
}

// ConcileDueToday asienta en el libro los instrumentos en estado PAGO que
// vencen hoy: un cheque genera un gasto CHEQUES, un pago futuro una fila
// mayorista PAGO; luego el instrumento pasa a Conciliado buscándolo por ID.
//
// Los dos pasos no son atómicos: si el asiento entra y el cambio de estado
// falla, la fila queda intermedia y el error se loguea. Cada fila se procesa
// aislada: un error no frena a las demás.
func (s *Service) ConcileDueToday() ([]Conciliation, error) {
	today := s.now().Format(entity.DueDateLayout)
	var results []Conciliation

	checkRows, err := s.dueRows(ledger.ChecksTable, ledger.ChecksHeaders, today)
	if err != nil {
		return nil, err
	}
	for _, row := range checkRows {
		result, err := s.concileCheck(row)
		if err != nil {
			s.log.Error().Err(err).Str("cheque", row.Get("ID")).Msg("error conciliando cheque")
			continue
		}
		results = append(results, *result)
	}

	paymentRows, err := s.dueRows(ledger.FuturePaymentsTable, ledger.FuturePaymentsHeaders, today)
	if err != nil {
		return nil, err
	}
	for _, row := range paymentRows {
		result, err := s.concileFuturePayment(row)
		if err != nil {
			s.log.Error().Err(err).Str("pago_futuro", row.Get("ID")).Msg("error conciliando pago futuro")
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *Service) dueRows(tableName string, headers []string, today string) ([]ledger.Row, error) {
	table, err := ledger.EnsureTable(s.store, tableName, headers)
	if err != nil {
		return nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, err
	}
	var due []ledger.Row
	for _, row := range rows {
		if row.Get("Estado") == entity.InstrumentDue && row.Get("Fecha Cobro") == today {
			due = append(due, row)
		}
	}
	return due, nil
}

func (s *Service) concileCheck(row ledger.Row) (*Conciliation, error) {
	counterparty := row.Get("Entidad")
	finalAmount := row.Amount("Monto Final")
	dueDate, err := time.Parse(entity.DueDateLayout, row.Get("Fecha Cobro"))
	if err != nil {
		return nil, fmt.Errorf("fecha de cobro: %w", err)
	}
	_, err = s.expenses.Add(expenses.AddInput{
		Category:    "CHEQUES",
		Subcategory: counterparty,
		Description: "Cobro de cheque a " + counterparty,
		Amount:      finalAmount,
		Date:        dueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("asiento en gastos: %w", err)
	}
	if err := s.UpdateStatus(ledger.ChecksTable, row.Get("ID"), entity.InstrumentConciliated); err != nil {
		return nil, fmt.Errorf("marca Conciliado: %w", err)
	}
	return &Conciliation{Kind: "cheque", ID: row.Get("ID"), Counterparty: counterparty, Amount: finalAmount}, nil
}

func (s *Service) concileFuturePayment(row ledger.Row) (*Conciliation, error) {
	counterparty := row.Get("Entidad")
	product := row.Get("Producto")
	if product == "" {
		product = "Pago Futuro Acreditado"
	}
	quantity := row.Quantity("Cantidad")
	if quantity <= 0 {
		quantity = 1
	}
	finalAmount := row.Amount("Monto Final")
	dueDate, err := time.Parse(entity.DueDateLayout, row.Get("Fecha Cobro"))
	if err != nil {
		return nil, fmt.Errorf("fecha de cobro: %w", err)
	}
	_, err = s.wholesale.AddRecord(wholesale.AddInput{
		Name:     counterparty,
		Product:  product,
		Quantity: quantity,
		Paid:     finalAmount,
		Total:    finalAmount,
		Category: wholesale.CategoryPaid,
		Date:     dueDate,
	})
	if err != nil {
		return nil, fmt.Errorf("asiento en mayoristas: %w", err)
	}
	if err := s.UpdateStatus(ledger.FuturePaymentsTable, row.Get("ID"), entity.InstrumentConciliated); err != nil {
		return nil, fmt.Errorf("marca Conciliado: %w", err)
	}
	return &Conciliation{
		Kind: "pago_futuro", ID: row.Get("ID"), Counterparty: counterparty,
		Product: product, Quantity: quantity, Amount: finalAmount,
	}, nil
}

// UpdateStatus busca un instrumento por ID y le aplica una transición de
// estado, rechazando cualquiera que no esté en la tabla de transiciones.
func (s *Service) UpdateStatus(tableName, id, newStatus string) error {
	table, err := s.store.Table(tableName)
	if err != nil {
		return err
	}
	rowNumber, err := table.Find(id, 1)
	if err != nil {
		return fmt.Errorf("instrumento %s: %w", id, err)
	}
	headers, err := table.Headers()
	if err != nil {
		return err
	}
	statusCol := ledger.FindColumn(headers, "Estado")
	if statusCol == 0 {
		return fmt.Errorf("columna Estado ausente en %s: %w", tableName, domain.ErrNotFound)
	}
	rows, err := table.Rows()
	if err != nil {
		return err
	}
	current := ""
	for _, row := range rows {
		if row.Number == rowNumber {
			current = row.Get("Estado")
			break
		}
	}
	if !entity.ValidInstrumentTransition(current, newStatus) {
		return fmt.Errorf("transición %q → %q no permitida: %w", current, newStatus, domain.ErrValidation)
	}
	return table.UpdateCell(rowNumber, statusCol, newStatus)
}

// ── Alertas ───────────────────────────────────────────────────────────────────

// DueItem un instrumento pendiente próximo a vencer.
type DueItem struct {
	Kind         string // "cheque" | "pago_futuro"
	ID           string
	Counterparty string
	Amount       decimal.Decimal
}

// DueGroup vencimientos de un mismo día.
type DueGroup struct {
	Date  time.Time
	Items []DueItem
}

// DueWithin lista los instrumentos Pendiente cuya fecha de cobro cae entre
// hoy y hoy+days (inclusive), agrupados por fecha. No muta ningún estado.
func (s *Service) DueWithin(days int) ([]DueGroup, error) {
	now := s.now()
	// Medianoche local, no Truncate: truncar corta en el día UTC y cerca de
	// la medianoche local deja afuera vencimientos de hoy.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	limit := today.AddDate(0, 0, days)

	groups := map[time.Time][]DueItem{}
	collect := func(rows []ledger.Row, kind string) {
		for _, row := range rows {
			due, err := time.ParseInLocation(entity.DueDateLayout, row.Get("Fecha Cobro"), now.Location())
			if err != nil {
				continue
			}
			if due.Before(today) || due.After(limit) {
				continue
			}
			groups[due] = append(groups[due], DueItem{
				Kind:         kind,
				ID:           row.Get("ID"),
				Counterparty: row.Get("Entidad"),
				Amount:       row.Amount("Monto Final"),
			})
		}
	}

	checkRows, err := s.pendingRows(ledger.ChecksTable, ledger.ChecksHeaders)
	if err != nil {
		return nil, err
	}
	collect(checkRows, "cheque")

	paymentRows, err := s.pendingRows(ledger.FuturePaymentsTable, ledger.FuturePaymentsHeaders)
	if err != nil {
		return nil, err
	}
	collect(paymentRows, "pago_futuro")

	result := make([]DueGroup, 0, len(groups))
	for date, items := range groups {
		result = append(result, DueGroup{Date: date, Items: items})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// SweepReport resultado del barrido diario completo.
type SweepReport struct {
	Matured     int
	Conciliated []Conciliation
	Upcoming    []DueGroup
}

// Sweep ejecuta el barrido diario en orden: maduración de vencidos, asiento
// de los que vencen hoy y alertas de próximos vencimientos.
func (s *Service) Sweep(lookAheadDays int) (*SweepReport, error) {
	matured, err := s.MatureOverdue()
	if err != nil {
		return nil, err
	}
	conciliated, err := s.ConcileDueToday()
	if err != nil {
		return nil, err
	}
	upcoming, err := s.DueWithin(lookAheadDays)
	if err != nil {
		return nil, err
	}
	return &SweepReport{Matured: matured, Conciliated: conciliated, Upcoming: upcoming}, nil
}

// WithClock fija el reloj del servicio. Para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
