package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// ErrNotConnected es un fallo duro: sin acceso a la planilla, un agregado en
// cero se confundiría con "mes sin actividad". ErrNotFound sobre una tabla
// mensual, en cambio, significa exactamente eso: todavía no hay actividad.
var (
	ErrNotConnected = errors.New("sin conexión a la planilla")
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrValidation   = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("operación duplicada")
	ErrOverpayment  = errors.New("el pago excede el saldo pendiente")
)
