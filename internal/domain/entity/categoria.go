package entity

// Categorías de gasto disponibles en el flujo de carga.
var ExpenseCategories = []string{
	"INSUMOS", "PROVEEDORES", "TALLERES", "DISEÑADOR", "FOTOGRAFO",
	"TIENDANUBE", "CADETERIA", "ARCA", "MARKETING", "VIATICOS",
	"SERVICIOS", "PERSONALES", "CANJES", "VARIOS",
}

// ExpenseSubcategories subcategorías por categoría (las que no figuran solo tienen "GENERAL").
var ExpenseSubcategories = map[string][]string{
	"INSUMOS":    {"ESTAMPAS", "GENERAL"},
	"TALLERES":   {"BORDADOS", "GENERAL"},
	"DISEÑADOR":  {"PG", "LOGO", "GENERAL"},
	"FOTOGRAFO":  {"CARRERAS", "PRODUCCION", "GENERAL"},
	"TIENDANUBE": {"MENSUAL", "GENERAL"},
	"CADETERIA":  {"UBER", "CORREO", "GENERAL"},
	"MARKETING":  {"INFLUENCERS", "PROMOCIONES", "IG ANUNCIOS", "GENERAL"},
	"VIATICOS":   {"CARRERAS", "EVENTOS", "GENERAL"},
	"PERSONALES": {"LUZ", "AGUA", "INTERNET", "ALQUILER", "EXPENSAS", "SEGURO", "COMBUSTIBLE", "COMIDA", "SALIDAS", "TARJETAS", "GENERAL"},
}

// Categorías con tratamiento especial en el balance.
const (
	CategoryPersonal = "PERSONALES" // retiros del dueño: descuentan solo del saldo neto
	CategoryCanje    = "CANJES"     // canjes en especie: fuera de ambos saldos
)

// CategoryClass clasifica una categoría de gasto para el motor de balance.
type CategoryClass int

const (
	ClassBusiness CategoryClass = iota // descuenta del saldo PG
	ClassPersonal                      // descuenta solo del saldo neto
	ClassCanje                         // se reporta aparte, no descuenta
)

// ClassifyCategory asigna cada categoría a exactamente una clase. La partición
// es exhaustiva: todo lo que no es PERSONALES ni CANJES es gasto del negocio.
func ClassifyCategory(category string) CategoryClass {
	switch category {
	case CategoryPersonal:
		return ClassPersonal
	case CategoryCanje:
		return ClassCanje
	default:
		return ClassBusiness
	}
}
