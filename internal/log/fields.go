package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldID            = "id"
	FieldTitle         = "title"
	FieldType          = "type"
	FieldValueCents    = "value_cents"
	FieldCategory      = "category"
	FieldSource        = "source"
	FieldImported      = "imported"
	FieldNewCategories = "new_categories"
	FieldSkipped       = "skipped"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentImport  = "import"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpList     = "list"
	OpBalance  = "balance"
	OpImport   = "import"
	OpPublish  = "publish"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds transaction-related fields
func (f LogFields) WithTransaction(id, title, typ string, valueCents int64, category string) LogFields {
	f[FieldID] = id
	f[FieldTitle] = title
	f[FieldType] = typ
	f[FieldValueCents] = valueCents
	f[FieldCategory] = category
	return f
}

// WithImport adds import summary fields
func (f LogFields) WithImport(source string, imported, newCategories, skipped int) LogFields {
	f[FieldSource] = source
	f[FieldImported] = imported
	f[FieldNewCategories] = newCategories
	f[FieldSkipped] = skipped
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
