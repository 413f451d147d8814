package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status_code"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldOperation = "operation"

	FieldAccountID   = "account_id"
	FieldAccountName = "account_name"
	FieldRuleID      = "rule_id"
	FieldRuleDesc    = "rule_description"
	FieldKind        = "kind"
	FieldAmount      = "amount"
	FieldAsOf        = "as_of"
	FieldSynthesized = "transactions_created"
	FieldAdvanced    = "rules_advanced"
	FieldBackend     = "backend"
)

// Components defines standard component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentLedger     = "ledger"
	ComponentStore      = "store"
	ComponentAutomation = "automation"
	ComponentSummary    = "summary"
	ComponentEvents     = "events"
	ComponentWorker     = "worker"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpList     = "list"
	OpToggle   = "toggle"
	OpCatchUp  = "catch_up"
	OpLoad     = "load"
	OpSave     = "save"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
