package entity

import "github.com/shopspring/decimal"

// MonthlySummary totales de una tabla mensual (ventas o gastos).
type MonthlySummary struct {
	Total      decimal.Decimal
	Count      int
	ByCategory map[string]decimal.Decimal
}

// WholesaleClient acumulado por cliente mayorista en el mes.
type WholesaleClient struct {
	Amount   decimal.Decimal
	Quantity int64
}

// WholesaleDetail una operación mayorista individual, para el detalle del reporte.
type WholesaleDetail struct {
	Client   string
	Product  string
	Quantity int64
	Amount   decimal.Decimal
}

// WholesaleSummary resumen mayorista del mes. Total suma lo efectivamente
// cobrado (Monto Pagado), no lo comprometido.
type WholesaleSummary struct {
	Total    decimal.Decimal
	Count    int
	ByClient map[string]WholesaleClient
	Details  []WholesaleDetail
}

// CategorySummary total y apertura por categoría (o subcategoría).
type CategorySummary struct {
	Total      decimal.Decimal
	ByCategory map[string]decimal.Decimal
}

// BalanceReport es la salida del motor de balance para un mes dado.
//
// El negocio separa a propósito tres flujos: plata que movió el negocio
// (saldo PG), retiros personales del dueño (solo afectan el saldo neto) y
// canjes en especie (se informan pero no son flujo de caja).
type BalanceReport struct {
	Sales     MonthlySummary
	Wholesale WholesaleSummary
	Canjes    CategorySummary // apertura por subcategoría
	Business  CategorySummary // gastos del negocio, por categoría
	Personal  CategorySummary // apertura por subcategoría
	SaldoPG   decimal.Decimal // (ventas + mayoristas) − gastos del negocio
	SaldoNeto decimal.Decimal // saldo PG − gastos personales
	MonthName string
	Year      int
}
