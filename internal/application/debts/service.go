// Package debts administra deudas: alta, consulta, pagos e incrementos.
package debts

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

const timestampLayout = "2006-01-02 15:04:05"

// Service caso de uso de deudas.
type Service struct {
	store ledger.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewService construye el caso de uso.
func NewService(store ledger.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

func (s *Service) table() (ledger.Table, error) {
	return ledger.EnsureTable(s.store, ledger.DebtsTable, ledger.DebtsHeaders)
}

// Create da de alta una deuda con el saldo pendiente igual al monto inicial.
func (s *Service) Create(name string, amount decimal.Decimal) (*entity.Debt, error) {
	if name == "" {
		return nil, fmt.Errorf("nombre requerido: %w", domain.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("monto de deuda no positivo: %w", domain.ErrValidation)
	}
	table, err := s.table()
	if err != nil {
		return nil, err
	}
	now := s.now()
	debt := &entity.Debt{
		ID:             fmt.Sprintf("DEUDA-%d", now.Unix()),
		Name:           name,
		InitialAmount:  amount,
		PaidAmount:     decimal.Zero,
		PendingBalance: amount,
		Status:         entity.DebtStatusActive,
		CreatedAt:      now,
		LastPaymentAt:  now,
	}
	row := []any{
		debt.ID, debt.Name,
		debt.InitialAmount.Round(2).String(), "0", debt.PendingBalance.Round(2).String(),
		debt.Status, now.Format(timestampLayout), now.Format(timestampLayout),
	}
	if err := table.AppendRow(row); err != nil {
		return nil, err
	}
	s.log.Info().Str("deuda", debt.ID).Str("nombre", name).Msg("deuda creada")
	return debt, nil
}

// Active lista las deudas con saldo pendiente positivo.
func (s *Service) Active() ([]entity.Debt, error) {
	table, err := s.table()
	if err != nil {
		return nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, err
	}
	var active []entity.Debt
	for _, row := range rows {
		pending := row.Amount("Saldo Pendiente")
		if !pending.IsPositive() {
			continue
		}
		active = append(active, entity.Debt{
			ID:             row.Get("ID Deuda"),
			Name:           row.Get("Nombre"),
			InitialAmount:  row.Amount("Monto Inicial"),
			PaidAmount:     row.Amount("Monto Pagado"),
			PendingBalance: pending,
			Status:         row.Get("Estado"),
		})
	}
	return active, nil
}

// Pay registra un pago sobre una deuda. El sobrepago se rechaza antes de
// mutar cualquier celda; al llegar el saldo a cero la deuda queda Saldada.
func (s *Service) Pay(debtID string, payment decimal.Decimal) (*entity.Debt, error) {
	if !payment.IsPositive() {
		return nil, fmt.Errorf("pago no positivo: %w", domain.ErrValidation)
	}
	table, err := s.table()
	if err != nil {
		return nil, err
	}
	rowNumber, headers, row, err := s.locate(table, debtID)
	if err != nil {
		return nil, err
	}

	currentPaid := row.Amount("Monto Pagado")
	currentPending := row.Amount("Saldo Pendiente")
	if payment.GreaterThan(currentPending) {
		return nil, domain.ErrOverpayment
	}

	newPaid := currentPaid.Add(payment)
	newPending := currentPending.Sub(payment)
	newStatus := entity.DebtStatusFor(newPending)

	paidCol := ledger.FindColumn(headers, "Monto Pagado")
	pendingCol := ledger.FindColumn(headers, "Saldo Pendiente")
	statusCol := ledger.FindColumn(headers, "Estado")
	lastPaidCol := ledger.FindColumn(headers, "Fecha Último Pago", "Fecha Ultimo Pago")
	if paidCol == 0 || pendingCol == 0 || statusCol == 0 || lastPaidCol == 0 {
		return nil, fmt.Errorf("faltan columnas en %s: %w", ledger.DebtsTable, domain.ErrNotFound)
	}

	if err := table.UpdateCell(rowNumber, paidCol, newPaid.Round(2).String()); err != nil {
		return nil, err
	}
	if err := table.UpdateCell(rowNumber, pendingCol, newPending.Round(2).String()); err != nil {
		return nil, err
	}
	if err := table.UpdateCell(rowNumber, statusCol, newStatus); err != nil {
		return nil, err
	}
	if err := table.UpdateCell(rowNumber, lastPaidCol, s.now().Format(timestampLayout)); err != nil {
		return nil, err
	}
	s.log.Info().Str("deuda", debtID).Str("saldo", newPending.String()).Msg("pago de deuda registrado")
	return &entity.Debt{
		ID:             debtID,
		Name:           row.Get("Nombre"),
		PaidAmount:     newPaid,
		PendingBalance: newPending,
		Status:         newStatus,
	}, nil
}

// Increase amplía una deuda existente: sube monto inicial y saldo pendiente,
// y la reactiva si estaba saldada.
func (s *Service) Increase(debtID string, amount decimal.Decimal) (*entity.Debt, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("incremento no positivo: %w", domain.ErrValidation)
	}
	table, err := s.table()
	if err != nil {
		return nil, err
	}
	rowNumber, headers, row, err := s.locate(table, debtID)
	if err != nil {
		return nil, err
	}

	newInitial := row.Amount("Monto Inicial").Add(amount)
	newPending := row.Amount("Saldo Pendiente").Add(amount)

	initialCol := ledger.FindColumn(headers, "Monto Inicial")
	pendingCol := ledger.FindColumn(headers, "Saldo Pendiente")
	statusCol := ledger.FindColumn(headers, "Estado")
	lastPaidCol := ledger.FindColumn(headers, "Fecha Último Pago", "Fecha Ultimo Pago")
	if initialCol == 0 || pendingCol == 0 || statusCol == 0 || lastPaidCol == 0 {
		return nil, fmt.Errorf("faltan columnas en %s: %w", ledger.DebtsTable, domain.ErrNotFound)
	}

	if err := table.UpdateCell(rowNumber, initialCol, newInitial.Round(2).String()); err != nil {
		return nil, err
	}
	if err := table.UpdateCell(rowNumber, pendingCol, newPending.Round(2).String()); err != nil {
		return nil, err
	}
	if err := table.UpdateCell(rowNumber, statusCol, entity.DebtStatusActive); err != nil {
		return nil, err
	}
	if err := table.UpdateCell(rowNumber, lastPaidCol, s.now().Format(timestampLayout)); err != nil {
		return nil, err
	}
	s.log.Info().Str("deuda", debtID).Str("saldo", newPending.String()).Msg("deuda incrementada")
	return &entity.Debt{
		ID:             debtID,
		Name:           row.Get("Nombre"),
		InitialAmount:  newInitial,
		PendingBalance: newPending,
		Status:         entity.DebtStatusActive,
	}, nil
}

// locate busca la fila de una deuda por ID y la devuelve junto con la cabecera.
func (s *Service) locate(table ledger.Table, debtID string) (int, []string, ledger.Row, error) {
	rowNumber, err := table.Find(debtID, 1)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil, ledger.Row{}, fmt.Errorf("deuda %s: %w", debtID, domain.ErrNotFound)
		}
		return 0, nil, ledger.Row{}, err
	}
	headers, err := table.Headers()
	if err != nil {
		return 0, nil, ledger.Row{}, err
	}
	rows, err := table.Rows()
	if err != nil {
		return 0, nil, ledger.Row{}, err
	}
	for _, row := range rows {
		if row.Number == rowNumber {
			return rowNumber, headers, row, nil
		}
	}
	return 0, nil, ledger.Row{}, fmt.Errorf("deuda %s: %w", debtID, domain.ErrNotFound)
}

// WithClock fija el reloj del servicio. Para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
