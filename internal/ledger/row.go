package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/MiltonKlun/Pombot-PG-Original/pkg/numeral"
)

// Row es una fila de datos con acceso a celdas por nombre de cabecera,
// insensible a mayúsculas y diacríticos. Centraliza la búsqueda tolerante
// para que ningún caso de uso re-derive la comparación por su cuenta.
type Row struct {
	Number  int // número de fila en la tabla (2-based)
	headers []string
	values  []string
}

// NewRow arma una fila a partir de la cabecera y los valores crudos.
func NewRow(number int, headers, values []string) Row {
	return Row{Number: number, headers: headers, values: values}
}

// Get devuelve el valor de la primera columna cuyo nombre coincida con algún
// candidato (en orden). Cadena vacía si ninguno resuelve.
func (r Row) Get(candidates ...string) string {
	col := FindColumn(r.headers, candidates...)
	if col == 0 || col > len(r.values) {
		return ""
	}
	return r.values[col-1]
}

// Amount parsea la celda como monto; cero si la celda falta o no es numérica.
func (r Row) Amount(candidates ...string) decimal.Decimal {
	amount, ok := numeral.ParseAmount(r.Get(candidates...))
	if !ok {
		return decimal.Zero
	}
	return amount
}

// Quantity parsea la celda como cantidad entera; cero si no resuelve.
func (r Row) Quantity(candidates ...string) int64 {
	qty, ok := numeral.ParseQuantity(r.Get(candidates...))
	if !ok {
		return 0
	}
	return qty
}

// FindColumn resuelve el índice (1-based) de una columna probando candidatos
// en orden contra las cabeceras normalizadas. Devuelve 0 si ninguno coincide.
// Las tablas fueron creadas a mano en distintas épocas, por eso conviven
// variantes como "Monto" / "Monto Final" o cabeceras con y sin tilde.
func FindColumn(headers []string, candidates ...string) int {
	for _, candidate := range candidates {
		target := numeral.NormalizeText(candidate)
		for i, header := range headers {
			if numeral.NormalizeText(header) == target {
				return i + 1
			}
		}
	}
	return 0
}
