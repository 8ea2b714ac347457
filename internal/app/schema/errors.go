package schema

import "strings"

// Kind tags a single field failure.
type Kind int

const (
	MissingRequired Kind = iota + 1
	InvalidValue
)

func (k Kind) String() string {
	switch k {
	case MissingRequired:
		return "missing_required"
	case InvalidValue:
		return "invalid_value"
	default:
		return "unknown"
	}
}

// FieldError is one failure recorded while binding a field.
type FieldError struct {
	Kind   Kind
	Field  string
	Reason string
}

// ValidationError aggregates every failure from one Bind call.
//
// Errors holds per-field failures in declaration order. Rule is set instead when all
// fields bound cleanly but the model's cross-field check rejected the input.
type ValidationError struct {
	Model  string
	Errors []FieldError
	Rule   string
}

// Missing returns the names of fields that were required but had no value.
func (e *ValidationError) Missing() []string {
	var out []string
	for _, fe := range e.Errors {
		if fe.Kind == MissingRequired {
			out = append(out, fe.Field)
		}
	}
	return out
}

// Invalid returns the failures of fields whose value was present but rejected.
func (e *ValidationError) Invalid() []FieldError {
	var out []FieldError
	for _, fe := range e.Errors {
		if fe.Kind == InvalidValue {
			out = append(out, fe)
		}
	}
	return out
}

// Error lists missing fields first, then bad fields with their reasons.
func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Rule != "" {
		return e.Rule
	}

	var parts []string
	if missing := e.Missing(); len(missing) > 0 {
		parts = append(parts, "required fields: "+strings.Join(missing, ", "))
	}
	if invalid := e.Invalid(); len(invalid) > 0 {
		bad := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			bad = append(bad, fe.Field+" ("+fe.Reason+")")
		}
		parts = append(parts, "bad fields: "+strings.Join(bad, ", "))
	}
	return strings.Join(parts, "; ")
}
