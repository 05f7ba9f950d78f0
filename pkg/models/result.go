package models

// ExecutionResult is what a node hands back to the engine. Outputs is keyed
// by output port ID; traversal only follows ports that are present and
// truthy. Success=false marks a node-level failure that fails the whole
// execution, which is why action nodes report their errors as output data
// instead.
type ExecutionResult struct {
	Success bool           `json:"success"`
	Outputs map[string]any `json:"outputs,omitempty"`
	Error   string         `json:"error,omitempty"`
	Logs    []LogEntry     `json:"logs,omitempty"`
}

// ValidationReport is the outcome of a node or graph validation pass.
// Errors make the subject invalid; warnings are advisory.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidationReport returns a report that is valid until an error is added.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{Valid: true}
}

// AddError records a validation failure and flips the report to invalid.
func (v *ValidationReport) AddError(msg string) {
	v.Valid = false
	v.Errors = append(v.Errors, msg)
}

// AddWarning records an advisory finding.
func (v *ValidationReport) AddWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}

// Merge folds another report into this one.
func (v *ValidationReport) Merge(other *ValidationReport) {
	if other == nil {
		return
	}

	if !other.Valid {
		v.Valid = false
	}

	v.Errors = append(v.Errors, other.Errors...)
	v.Warnings = append(v.Warnings, other.Warnings...)
}
