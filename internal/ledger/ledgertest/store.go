// Package ledgertest provee un Store en memoria para tests de casos de uso,
// como doble de prueba explícito en lugar de monkeypatching de estado global.
package ledgertest

import (
	"fmt"
	"sync"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
)

// Store implementa ledger.Store sobre mapas en memoria.
// Con Unavailable=true toda operación devuelve domain.ErrNotConnected,
// para ensayar los caminos de backend caído.
type Store struct {
	mu          sync.Mutex
	order       []string
	tables      map[string]*Table
	Unavailable bool
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{tables: map[string]*Table{}}
}

// Table devuelve la tabla o domain.ErrNotFound.
func (s *Store) Table(name string) (ledger.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return nil, domain.ErrNotConnected
	}
	table, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("tabla %q: %w", name, domain.ErrNotFound)
	}
	return table, nil
}

// CreateTable crea una tabla con la cabecera dada.
func (s *Store) CreateTable(name string, headers []string) (ledger.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return nil, domain.ErrNotConnected
	}
	if _, exists := s.tables[name]; exists {
		return nil, fmt.Errorf("tabla %q: %w", name, domain.ErrDuplicate)
	}
	table := &Table{store: s, name: name, headers: append([]string(nil), headers...)}
	s.tables[name] = table
	s.order = append(s.order, name)
	return table, nil
}

// TableTitles lista los nombres de tablas en orden de creación.
func (s *Store) TableTitles() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return nil, domain.ErrNotConnected
	}
	return append([]string(nil), s.order...), nil
}

// Seed crea una tabla con filas iniciales. Para armar escenarios en tests.
func (s *Store) Seed(name string, headers []string, rows ...[]any) *Table {
	table, err := s.CreateTable(name, headers)
	if err != nil {
		panic(err)
	}
	t := table.(*Table)
	for _, row := range rows {
		if err := t.AppendRow(row); err != nil {
			panic(err)
		}
	}
	return t
}

// MustTable devuelve una tabla existente para inspección directa.
func (s *Store) MustTable(name string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.tables[name]
	if !ok {
		panic("ledgertest: tabla inexistente " + name)
	}
	return table
}

// Table implementación en memoria de ledger.Table.
type Table struct {
	store   *Store
	name    string
	headers []string
	rows    [][]string
}

func (t *Table) Name() string { return t.name }

func (t *Table) Headers() ([]string, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.Unavailable {
		return nil, domain.ErrNotConnected
	}
	return append([]string(nil), t.headers...), nil
}

func (t *Table) Rows() ([]ledger.Row, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.Unavailable {
		return nil, domain.ErrNotConnected
	}
	rows := make([]ledger.Row, 0, len(t.rows))
	for i, values := range t.rows {
		rows = append(rows, ledger.NewRow(i+2, t.headers, values))
	}
	return rows, nil
}

func (t *Table) AppendRow(values []any) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.Unavailable {
		return domain.ErrNotConnected
	}
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprint(v)
	}
	t.rows = append(t.rows, row)
	return nil
}

func (t *Table) UpdateCell(rowNumber, column int, value any) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.Unavailable {
		return domain.ErrNotConnected
	}
	idx := rowNumber - 2
	if idx < 0 || idx >= len(t.rows) || column < 1 {
		return fmt.Errorf("celda (%d,%d): %w", rowNumber, column, domain.ErrNotFound)
	}
	for len(t.rows[idx]) < column {
		t.rows[idx] = append(t.rows[idx], "")
	}
	t.rows[idx][column-1] = fmt.Sprint(value)
	return nil
}

func (t *Table) Find(value string, column int) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.Unavailable {
		return 0, domain.ErrNotConnected
	}
	for i, row := range t.rows {
		if column >= 1 && column <= len(row) && row[column-1] == value {
			return i + 2, nil
		}
	}
	return 0, fmt.Errorf("valor %q en columna %d: %w", value, column, domain.ErrNotFound)
}

// Rewrite reemplaza cabecera y filas completas, como hace la sincronización
// de catálogo sobre la tabla Productos.
func (t *Table) Rewrite(headers []string, rows [][]any) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.Unavailable {
		return domain.ErrNotConnected
	}
	t.headers = append([]string(nil), headers...)
	t.rows = nil
	for _, row := range rows {
		converted := make([]string, len(row))
		for i, v := range row {
			converted[i] = fmt.Sprint(v)
		}
		t.rows = append(t.rows, converted)
	}
	return nil
}

// Cell devuelve el valor crudo de una celda (rowNumber 2-based, column 1-based).
func (t *Table) Cell(rowNumber, column int) string {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	idx := rowNumber - 2
	if idx < 0 || idx >= len(t.rows) || column < 1 || column > len(t.rows[idx]) {
		return ""
	}
	return t.rows[idx][column-1]
}

// RowCount cantidad de filas de datos.
func (t *Table) RowCount() int {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return len(t.rows)
}

var _ ledger.Store = (*Store)(nil)
var _ ledger.Table = (*Table)(nil)
var _ ledger.Rewriter = (*Table)(nil)
