package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// spanishMonths meses en castellano, indexados 1..12.
var spanishMonths = [13]string{"", "Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}

// MonthName devuelve el nombre del mes en castellano, o "MesInvalido".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "MesInvalido"
	}
	return spanishMonths[month]
}

// monthNumber resuelve un nombre de mes (cualquier capitalización) a 1..12.
func monthNumber(name string) (int, bool) {
	for i := 1; i <= 12; i++ {
		if strings.EqualFold(spanishMonths[i], name) {
			return i, true
		}
	}
	return 0, false
}

// MonthlyTableName arma el nombre de una tabla mensual: "Gastos Agosto 2026".
func MonthlyTableName(base string, year, month int) string {
	return fmt.Sprintf("%s %s %d", base, MonthName(month), year)
}

// ParseMonthlyTitle descompone un título de tabla mensual en (base, año, mes).
// Devuelve ok=false para títulos que no siguen el patrón "<Base> <Mes> <Año>".
func ParseMonthlyTitle(title string) (base string, year, month int, ok bool) {
	parts := strings.Fields(title)
	if len(parts) < 3 {
		return "", 0, 0, false
	}
	yearPart := parts[len(parts)-1]
	monthPart := parts[len(parts)-2]

	y, err := strconv.Atoi(yearPart)
	if err != nil {
		return "", 0, 0, false
	}
	m, found := monthNumber(monthPart)
	if !found {
		return "", 0, 0, false
	}
	return strings.Join(parts[:len(parts)-2], " "), y, m, true
}
