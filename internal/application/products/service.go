// Package products expone el catálogo de productos respaldado por la tabla
// Productos, con un caché en memoria de TTL corto y la sincronización masiva
// desde la tienda online.
package products

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/domain/entity"
	"github.com/MiltonKlun/Pombot-PG-Original/internal/ledger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/numeral"
)

// CacheTTL vigencia del caché de catálogo. Corto a propósito: la planilla
// puede ser editada a mano y el stock cambia con cada venta online.
const CacheTTL = 60 * time.Second

// Catalog es la fuente externa de variantes para la sincronización masiva.
type Catalog interface {
	ListVariants() ([]entity.Variant, error)
}

// Service caso de uso de catálogo.
type Service struct {
	store   ledger.Store
	catalog Catalog
	log     *logger.Logger
	now     func() time.Time

	mu        sync.Mutex
	cached    []entity.Variant
	fetchedAt time.Time
}

// NewService construye el caso de uso. catalog puede ser nil si la
// sincronización con la tienda no está configurada.
func NewService(store ledger.Store, catalog Catalog, log *logger.Logger) *Service {
	return &Service{store: store, catalog: catalog, log: log, now: time.Now}
}

// Invalidate descarta el caché. Debe llamarse después de cualquier escritura
// que cambie stock, para no servir cifras viejas en la ventana del TTL.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.fetchedAt = time.Time{}
}

// All devuelve todas las variantes del catálogo, desde el caché si sigue
// vigente.
func (s *Service) All() ([]entity.Variant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil && s.now().Sub(s.fetchedAt) < CacheTTL {
		return s.cached, nil
	}

	table, err := ledger.EnsureTable(s.store, ledger.ProductsTable, ledger.ProductsHeaders)
	if err != nil {
		return nil, err
	}
	rows, err := table.Rows()
	if err != nil {
		return nil, err
	}
	variants := make([]entity.Variant, 0, len(rows))
	for _, row := range rows {
		variants = append(variants, variantFromRow(row))
	}
	s.cached = variants
	s.fetchedAt = s.now()
	s.log.Info().Int("variantes", len(variants)).Msg("caché de productos refrescado")
	return variants, nil
}

func variantFromRow(row ledger.Row) entity.Variant {
	return entity.Variant{
		RowNumber: row.Number,
		Name:      row.Get("Producto"),
		ProductID: row.Quantity("ID Producto"),
		VariantID: row.Quantity("ID Variante"),
		SKU:       row.Get("SKU"),
		OptionNames: [3]string{
			row.Get("Opción 1: Nombre"), row.Get("Opción 2: Nombre"), row.Get("Opción 3: Nombre"),
		},
		OptionValues: [3]string{
			row.Get("Opción 1: Valor"), row.Get("Opción 2: Valor"), row.Get("Opción 3: Valor"),
		},
		Category:    row.Get(ledger.CategoryColumn...),
		Stock:       row.Quantity("Stock"),
		UnitPrice:   row.Amount("Precio Unitario"),
		DiscountPct: row.Amount("%"),
		Discount:    row.Amount("Descuento"),
		FinalPrice:  row.Amount("Precio Final"),
	}
}

// Categories lista las categorías únicas del catálogo, ordenadas.
func (s *Service) Categories() ([]string, error) {
	variants, err := s.All()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, v := range variants {
		category := strings.TrimSpace(v.Category)
		if category != "" {
			seen[category] = true
		}
	}
	return sortedKeys(seen), nil
}

// ByCategory lista los nombres de producto de una categoría, ordenados.
func (s *Service) ByCategory(category string) ([]string, error) {
	variants, err := s.All()
	if err != nil {
		return nil, err
	}
	target := numeral.NormalizeText(category)
	seen := map[string]bool{}
	for _, v := range variants {
		if numeral.NormalizeText(v.Category) != target {
			continue
		}
		name := strings.TrimSpace(v.Name)
		if name != "" {
			seen[name] = true
		}
	}
	return sortedKeys(seen), nil
}

// Options devuelve el nombre y los valores disponibles del nivel de opción
// indicado (1 a 3) para un producto, acotados por las selecciones previas.
func (s *Service) Options(productName string, level int, prior map[string]string) (string, []string, error) {
	if level < 1 || level > 3 {
		return "", nil, fmt.Errorf("nivel de opción %d: %w", level, domain.ErrValidation)
	}
	variants, err := s.All()
	if err != nil {
		return "", nil, err
	}
	target := numeral.NormalizeText(productName)
	optionName := ""
	values := map[string]bool{}
	for _, v := range variants {
		if numeral.NormalizeText(v.Name) != target || !matchesSelections(v, prior) {
			continue
		}
		if optionName == "" {
			optionName = strings.TrimSpace(v.OptionNames[level-1])
		}
		value := strings.TrimSpace(v.OptionValues[level-1])
		if value != "" {
			values[value] = true
		}
	}
	return optionName, sortedKeys(values), nil
}

// Variant busca la variante exacta de un producto según las selecciones de
// opción ("Color" → "Rojo"). ErrNotFound si ninguna fila coincide.
func (s *Service) Variant(productName string, selections map[string]string) (*entity.Variant, error) {
	variants, err := s.All()
	if err != nil {
		return nil, err
	}
	target := numeral.NormalizeText(productName)
	for _, v := range variants {
		if numeral.NormalizeText(v.Name) == target && matchesSelections(v, selections) {
			found := v
			return &found, nil
		}
	}
	return nil, fmt.Errorf("variante de %q: %w", productName, domain.ErrNotFound)
}

// matchesSelections verifica que cada selección por nombre de opción coincida
// con el valor de la variante, con la misma tolerancia de texto que el resto
// del sistema.
func matchesSelections(v entity.Variant, selections map[string]string) bool {
	for name, want := range selections {
		matched := false
		for i := range v.OptionNames {
			if numeral.NormalizeText(v.OptionNames[i]) == numeral.NormalizeText(name) {
				matched = numeral.NormalizeText(v.OptionValues[i]) == numeral.NormalizeText(want)
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// UpdateStock fija el stock de una fila de la tabla Productos.
func (s *Service) UpdateStock(rowNumber int, newStock int64) error {
	table, err := s.store.Table(ledger.ProductsTable)
	if err != nil {
		return err
	}
	headers, err := table.Headers()
	if err != nil {
		return err
	}
	stockCol := ledger.FindColumn(headers, "Stock")
	if stockCol == 0 {
		return fmt.Errorf("columna Stock ausente en %s: %w", ledger.ProductsTable, domain.ErrNotFound)
	}
	if err := table.UpdateCell(rowNumber, stockCol, newStock); err != nil {
		return err
	}
	s.log.Info().Int("fila", rowNumber).Int64("stock", newStock).Msg("stock actualizado en planilla")
	return nil
}

// SyncFromCatalog reemplaza la tabla Productos con el catálogo completo de la
// tienda y descarta el caché. Devuelve la cantidad de variantes escritas.
func (s *Service) SyncFromCatalog() (int, error) {
	if s.catalog == nil {
		return 0, fmt.Errorf("catálogo de tienda no configurado: %w", domain.ErrValidation)
	}
	variants, err := s.catalog.ListVariants()
	if err != nil {
		return 0, err
	}
	table, err := ledger.EnsureTable(s.store, ledger.ProductsTable, ledger.ProductsHeaders)
	if err != nil {
		return 0, err
	}
	rewriter, ok := table.(ledger.Rewriter)
	if !ok {
		return 0, fmt.Errorf("la tabla %s no soporta reescritura completa", ledger.ProductsTable)
	}
	rows := make([][]any, 0, len(variants))
	for _, v := range variants {
		rows = append(rows, v.Row())
	}
	if err := rewriter.Rewrite(ledger.ProductsHeaders, rows); err != nil {
		return 0, err
	}
	s.Invalidate()
	s.log.Info().Int("variantes", len(rows)).Msg("tabla Productos sincronizada desde la tienda")
	return len(rows), nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WithClock fija el reloj del servicio. Para tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}
