package dto

// BalanceResponse reporte de balance mensual serializado para la API.
// Los montos van como strings decimales para no perder precisión en JSON.
type BalanceResponse struct {
	Month          string            `json:"month"`
	Year           int               `json:"year"`
	SalesTotal     string            `json:"sales_total"`
	WholesaleTotal string            `json:"wholesale_total"`
	BusinessTotal  string            `json:"business_expenses_total"`
	PersonalTotal  string            `json:"personal_total"`
	CanjesTotal    string            `json:"canjes_total"`
	SaldoPG        string            `json:"saldo_pg"`
	SaldoNeto      string            `json:"saldo_neto"`
	Business       map[string]string `json:"business_by_category"`
	Personal       map[string]string `json:"personal_by_subcategory"`
	Canjes         map[string]string `json:"canjes_by_subcategory"`
}

// MonthOption un mes con actividad registrada.
type MonthOption struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
}
