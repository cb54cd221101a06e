package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un instrumento diferido (cheque o pago futuro).
//
// El ciclo de vida es estrictamente unidireccional:
//
//	Pendiente --(venció la fecha)--> PAGO --(asentado en el libro)--> Conciliado
//
// "PAGO" marca la maduración automática; "Conciliado" marca que el barrido
// diario ya asentó el movimiento en Gastos o Mayoristas.
const (
	InstrumentPending     = "Pendiente"
	InstrumentDue         = "PAGO"
	InstrumentConciliated = "Conciliado"
)

// instrumentTransitions tabla cerrada de transiciones válidas.
var instrumentTransitions = map[string]string{
	InstrumentPending: InstrumentDue,
	InstrumentDue:     InstrumentConciliated,
}

// ValidInstrumentTransition indica si el pasaje de estado está permitido.
// Cualquier retroceso o salto (Pendiente→Conciliado) se rechaza.
func ValidInstrumentTransition(from, to string) bool {
	return instrumentTransitions[from] == to
}

// CheckTaxRate impuesto al cheque: 1.2% sobre el monto inicial.
var CheckTaxRate = decimal.NewFromFloat(0.012)

// DueDateLayout formato de la fecha de cobro en la planilla.
const DueDateLayout = "02/01/2006"

// Check es un cheque emitido: dinero que va a salir en la fecha de cobro.
// FinalAmount = InitialAmount + Commission + Tax.
type Check struct {
	ID            string // CHK-<unix timestamp>
	DueDate       string // dd/mm/yyyy
	Counterparty  string
	InitialAmount decimal.Decimal
	Tax           decimal.Decimal
	Commission    decimal.Decimal
	FinalAmount   decimal.Decimal
	Status        string
}

// NewCheck arma un cheque calculando impuesto y monto final al momento de la
// emisión (no en la conciliación).
func NewCheck(counterparty string, initial, commission decimal.Decimal, dueDate string, emittedAt time.Time) *Check {
	tax := initial.Mul(CheckTaxRate).Round(2)
	return &Check{
		ID:            fmt.Sprintf("CHK-%d", emittedAt.Unix()),
		DueDate:       dueDate,
		Counterparty:  counterparty,
		InitialAmount: initial,
		Tax:           tax,
		Commission:    commission,
		FinalAmount:   initial.Add(commission).Add(tax).Round(2),
		Status:        InstrumentPending,
	}
}

// FuturePayment es un pago futuro a recibir: dinero que va a entrar.
// FinalAmount = InitialAmount − Commission.
type FuturePayment struct {
	ID            string // FP-<unix timestamp>
	DueDate       string // dd/mm/yyyy
	Counterparty  string
	Product       string
	Quantity      int64
	InitialAmount decimal.Decimal
	Commission    decimal.Decimal
	FinalAmount   decimal.Decimal
	Status        string
}

// NewFuturePayment arma un pago futuro con el monto final neto de comisión.
func NewFuturePayment(counterparty, product string, quantity int64, initial, commission decimal.Decimal, dueDate string, receivedAt time.Time) *FuturePayment {
	return &FuturePayment{
		ID:            fmt.Sprintf("FP-%d", receivedAt.Unix()),
		DueDate:       dueDate,
		Counterparty:  counterparty,
		Product:       product,
		Quantity:      quantity,
		InitialAmount: initial,
		Commission:    commission,
		FinalAmount:   initial.Sub(commission).Round(2),
		Status:        InstrumentPending,
	}
}
