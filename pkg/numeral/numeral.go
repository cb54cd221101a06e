// Package numeral implementa el parseo de montos y cantidades ingresados como
// texto libre, aceptando tanto notación argentina ("5.000,75") como estándar
// ("5000.75"). Todo importe del sistema pasa por acá antes de persistirse.
package numeral

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseAmount interpreta un texto numérico y devuelve el monto como decimal.
// Nunca entra en pánico; ante entrada vacía o no numérica devuelve ok=false.
//
// Desambiguación:
//   - Si hay coma → formato argentino: los puntos son separadores de miles y
//     la coma es el separador decimal.
//   - Un solo punto con 1-2 dígitos detrás → decimal estándar ("5000.00", "12.5").
//   - Un solo punto con más de 2 dígitos detrás → separador de miles ("5.000").
//   - Varios puntos → siempre separadores de miles ("1.000.000"). Esto implica
//     que "12.34.56" parsea como 123456; es una ambigüedad conocida del formato
//     de entrada, no un defecto a corregir.
func ParseAmount(text string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return decimal.Zero, false
	}

	if strings.Contains(cleaned, ",") {
		// Formato argentino: puntos = miles, coma = decimal
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
		return parse(cleaned)
	}

	switch dots := strings.Count(cleaned, "."); {
	case dots == 1:
		idx := strings.LastIndex(cleaned, ".")
		afterDot := strings.TrimPrefix(cleaned[idx+1:], "-")
		if len(afterDot) <= 2 {
			// Decimal estándar (ej. "5000.00", "12.5")
			return parse(cleaned)
		}
		// Separador de miles (ej. "5.000" = 5000)
		return parse(strings.ReplaceAll(cleaned, ".", ""))
	case dots > 1:
		return parse(strings.ReplaceAll(cleaned, ".", ""))
	default:
		return parse(cleaned)
	}
}

// ParseQuantity interpreta una cantidad entera, truncando decimales hacia abajo.
func ParseQuantity(text string) (int64, bool) {
	amount, ok := ParseAmount(text)
	if !ok {
		return 0, false
	}
	return amount.Floor().IntPart(), true
}

func parse(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

var normalizer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText baja a minúsculas, recorta espacios y elimina diacríticos.
// Se usa para comparar cabeceras y categorías con variaciones de escritura
// ("Categoría" ≡ "categoria" ≡ "CATEGORIA").
func NormalizeText(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	normalized, _, err := transform.String(normalizer, lowered)
	if err != nil {
		return lowered
	}
	return normalized
}
