package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldExpenseID   = "expense_id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldPeriod      = "period"
	FieldCount       = "count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentSession   = "session"
	ComponentExpenses  = "expenses"
	ComponentProfile   = "profile"
	ComponentStore     = "store_client"
	ComponentDevServer = "devserver"
	ComponentStorage   = "storage"
	ComponentExport    = "export"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpAdd      = "add"
	OpUpdate   = "update"
	OpRemove   = "remove"
	OpLogin    = "login"
	OpRegister = "register"
	OpLogout   = "logout"
	OpExport   = "export"
	OpImport   = "import"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
