package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una deuda.
const (
	DebtStatusActive  = "Activa"
	DebtStatusSettled = "Saldada"
)

// Debt representa una deuda registrada contra un tercero.
// Invariante: PendingBalance = InitialAmount − PaidAmount, nunca negativo
// tras un pago válido (los sobrepagos se rechazan antes de mutar la fila).
type Debt struct {
	ID             string // DEUDA-<unix timestamp>
	Name           string
	InitialAmount  decimal.Decimal
	PaidAmount     decimal.Decimal
	PendingBalance decimal.Decimal
	Status         string
	CreatedAt      time.Time
	LastPaymentAt  time.Time
}

// DebtStatusFor devuelve el estado que corresponde a un saldo pendiente.
func DebtStatusFor(pending decimal.Decimal) string {
	if pending.IsPositive() {
		return DebtStatusActive
	}
	return DebtStatusSettled
}
