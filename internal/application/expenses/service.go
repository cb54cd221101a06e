// Package expenses registra gastos en la tabla mensual que corresponda.
package expenses

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

const timestampLayout = "2006-01-02 15:04:05"

// Service caso de uso de gastos.
type Service struct {
	store ledger.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewService construye el caso de uso.
func NewService(store ledger.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// AddInput datos de un gasto a registrar. Date en cero usa la fecha actual;
// el conciliador la fija a la fecha de cobro del instrumento.
type AddInput struct {
	Category    string
	Subcategory string
	Description string
	Details     string
	Amount      decimal.Decimal
	Date        time.Time
}

// Added resultado del alta.
type Added struct {
	Timestamp string
	TableName string
}

// Add asienta el gasto en la tabla mensual de su fecha, creándola si hace falta.
func (s *Service) Add(in AddInput) (*Added, error) {
	if !in.Amount.IsPositive() {
		return nil, fmt.Errorf("monto de gasto no positivo: %w", domain.ErrValidation)
	}
	if in.Category == "" {
		return nil, fmt.Errorf("categoría requerida: %w", domain.ErrValidation)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	table, err := ledger.EnsureMonthly(s.store, ledger.ExpensesBase, ledger.ExpensesHeaders, date)
	if err != nil {
		return nil, err
	}
	timestamp := date.Format(timestampLayout)
	row := []any{timestamp, in.Category, in.Subcategory, in.Description, in.Details, in.Amount.Round(2).String()}
	if err := table.AppendRow(row); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tabla", table.Name()).
		Str("categoria", in.Category).
		Str("monto", in.Amount.String()).
		Msg("gasto registrado")
	return &Added{Timestamp: timestamp, TableName: table.Name()}, nil
}

// WithClock fija el reloj del servicio. Para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
