// Package ledger define el puerto hacia el libro contable tabular (una
// planilla con tablas nombradas) y las utilidades de resolución de esquema.
// Las implementaciones viven en internal/infrastructure.
package ledger

import (
	"errors"
	"time"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
)

// Store es el libro contable: tablas nombradas de filas con cabecera.
//
// Contrato de errores: Table devuelve domain.ErrNotFound si la tabla no
// existe y domain.ErrNotConnected si el backend está inaccesible. Quien
// consume decide cuál de los dos es recuperable (una tabla mensual ausente
// significa "sin actividad"; un backend caído es fallo duro).
type Store interface {
	Table(name string) (Table, error)
	CreateTable(name string, headers []string) (Table, error)
	TableTitles() ([]string, error)
}

// Table es una tabla individual. Las filas de datos se numeran desde 2
// (la fila 1 es la cabecera), igual que en la planilla real.
type Table interface {
	Name() string
	Headers() ([]string, error)
	Rows() ([]Row, error)
	AppendRow(values []any) error
	UpdateCell(rowNumber, column int, value any) error
	// Find busca un valor exacto en una columna (1-based) y devuelve el
	// número de fila, o domain.ErrNotFound.
	Find(value string, column int) (int, error)
}

// Rewriter es una capacidad opcional de Table: reemplazar el contenido
// completo (cabecera incluida) en una sola pasada. La usa la sincronización
// de catálogo, que reconstruye la tabla Productos desde cero.
type Rewriter interface {
	Rewrite(headers []string, rows [][]any) error
}

// EnsureTable obtiene una tabla o la crea con las cabeceras dadas si no existe.
func EnsureTable(s Store, name string, headers []string) (Table, error) {
	table, err := s.Table(name)
	if errors.Is(err, domain.ErrNotFound) {
		return s.CreateTable(name, headers)
	}
	return table, err
}

// EnsureMonthly obtiene o crea la tabla mensual de un libro para la fecha dada.
func EnsureMonthly(s Store, base string, headers []string, date time.Time) (Table, error) {
	return EnsureTable(s, MonthlyTableName(base, date.Year(), int(date.Month())), headers)
}
