package validation

// OutcomeKind discriminates result entries from a validation run.
type OutcomeKind string

// Outcome kinds. Every (row, rule) unit resolves to exactly one of
// pass, flag, execution error, or timeout; passes produce no entry.
// Compilation errors are rule-scoped and carry no row index.
const (
	KindFlag             OutcomeKind = "flag"
	KindCompilationError OutcomeKind = "compilation_error"
	KindExecutionError   OutcomeKind = "execution_error"
	KindTimeout          OutcomeKind = "timeout"
)

// ruleScoped is the RowIndex for entries not tied to a single row.
const ruleScoped = -1

// Outcome is one entry in a validation run's result sequence. Errors
// and timeouts are entries here, never failures of the whole batch.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	RowIndex   int         `json:"row_index"`
	Field      string      `json:"field,omitempty"`
	FieldValue string      `json:"field_value,omitempty"`
	RuleID     string      `json:"rule_id"`
	RuleName   string      `json:"rule_name"`
	Message    string      `json:"message"`
}
