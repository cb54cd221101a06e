package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// UnlimitedStock valor centinela para variantes sin control de stock.
const UnlimitedStock = 999

// Variant es una variante concreta de un producto del catálogo, la unidad
// vendible. RowNumber referencia su fila en la tabla Productos cuando la
// variante vino de la planilla; es cero para variantes recién sincronizadas.
type Variant struct {
	RowNumber    int
	Name         string
	ProductID    int64
	VariantID    int64
	SKU          string
	OptionNames  [3]string
	OptionValues [3]string
	Category     string
	Stock        int64
	UnitPrice    decimal.Decimal
	DiscountPct  decimal.Decimal
	Discount     decimal.Decimal
	FinalPrice   decimal.Decimal
}

// Description arma la descripción de la variante con los valores de opción
// no vacíos ("Rojo, XL").
func (v Variant) Description() string {
	var parts []string
	for _, value := range v.OptionValues {
		if strings.TrimSpace(value) != "" {
			parts = append(parts, value)
		}
	}
	return strings.Join(parts, ", ")
}

// Row serializa la variante con el orden de columnas de la tabla Productos.
func (v Variant) Row() []any {
	return []any{
		v.Name, v.ProductID, v.VariantID, v.SKU,
		v.OptionNames[0], v.OptionValues[0],
		v.OptionNames[1], v.OptionValues[1],
		v.OptionNames[2], v.OptionValues[2],
		v.Category, v.Stock,
		v.UnitPrice.Round(2).String(),
		v.DiscountPct.Round(2).String(),
		v.Discount.Round(2).String(),
		v.FinalPrice.Round(2).String(),
	}
}
