package ledger

// Nombres de tablas. Ventas, Gastos y Mayoristas se particionan por mes
// ("Gastos Agosto 2026"); el resto son tablas únicas.
const (
	SalesBase     = "Ventas"
	ExpensesBase  = "Gastos"
	WholesaleBase = "Mayoristas"

	ProductsTable        = "Productos"
	DebtsTable           = "Deudas"
	ChecksTable          = "Cheques"
	FuturePaymentsTable  = "Pagos Futuros"
	WebhookLogsTable     = "Webhook_Logs"
	ProcessedEventsTable = "Processed_Events"
)

// Cabeceras canónicas por tabla.
var (
	SalesHeaders = []string{"Fecha", "Producto", "Variante", "Cliente", "Categoría", "Cantidad", "Precio Unitario", "%", "Descuento", "Precio Total"}

	ExpensesHeaders = []string{"Fecha", "Categoría", "Subcategoría", "Descripción Principal", "Detalles Adicionales", "Monto"}

	ProductsHeaders = []string{"Producto", "ID Producto", "ID Variante", "SKU", "Opción 1: Nombre", "Opción 1: Valor", "Opción 2: Nombre", "Opción 2: Valor", "Opción 3: Nombre", "Opción 3: Valor", "Categoría", "Stock", "Precio Unitario", "%", "Descuento", "Precio Final"}

	DebtsHeaders = []string{"ID Deuda", "Nombre", "Monto Inicial", "Monto Pagado", "Saldo Pendiente", "Estado", "Fecha Creación", "Fecha Último Pago"}

	WholesaleHeaders = []string{"Fecha", "Nombre", "Producto", "Cantidad", "Monto Total", "Monto Pagado", "Monto Restante", "Categoría"}

	ChecksHeaders = []string{"ID", "Fecha Cobro", "Entidad", "Monto Inicial", "Impuesto", "Comision", "Monto Final", "Estado"}

	FuturePaymentsHeaders = []string{"ID", "Fecha Cobro", "Entidad", "Producto", "Cantidad", "Monto Inicial", "Comision", "Monto Final", "Estado"}

	ProcessedEventsHeaders = []string{"EventID", "Timestamp"}

	WebhookLogsHeaders = []string{"EventID", "EventType", "OrderID", "Timestamp"}
)

// Candidatos de columnas con variantes históricas de nombre.
var (
	CategoryColumn = []string{"Categoría", "Categoria"}

	// Las tablas de gastos viejas usan "Monto"; algunas posteriores "Monto Final".
	ExpenseAmountColumn = []string{"Monto", "Monto Final"}

	// Ventas y mayoristas pasaron por tres nombres de columna de importe.
	SaleAmountColumn = []string{"Precio Total", "Monto Total", "Precio Final"}
)

// Uncategorized etiqueta para filas sin categoría resoluble.
const Uncategorized = "Sin Categoria"
