package schema

import (
	"errors"
	"sort"
)

// Model is an ordered set of fields plus an optional cross-field rule.
type Model struct {
	Name   string
	Fields []Field

	// Validate runs after every field bound cleanly. A nil Validate always passes.
	Validate func(v *Values) error
}

// Values is the result of a successful Bind.
type Values struct {
	model    *Model
	values   map[string]any
	provided map[string]bool
}

// Has reports whether the caller supplied the field, including an explicit null.
func (v *Values) Has(name string) bool {
	return v.provided[name]
}

// HasAll reports whether every named field was supplied.
func (v *Values) HasAll(names ...string) bool {
	for _, n := range names {
		if !v.provided[n] {
			return false
		}
	}
	return true
}

// Provided lists the supplied field names in declaration order.
func (v *Values) Provided() []string {
	out := make([]string, 0, len(v.provided))
	for _, f := range v.model.Fields {
		if v.provided[f.Name] {
			out = append(out, f.Name)
		}
	}
	return out
}

// Value returns the normalized value of a field, or nil when absent or null.
func (v *Values) Value(name string) any {
	return v.values[name]
}

// Bind validates raw against m. It never stops at the first failure: every field is
// checked and all failures come back in one *ValidationError. A failing cross-field rule
// also comes back as a *ValidationError with Rule set.
func Bind(m *Model, raw map[string]any) (*Values, error) {
	out := &Values{
		model:    m,
		values:   make(map[string]any, len(m.Fields)),
		provided: make(map[string]bool, len(m.Fields)),
	}

	var missing, invalid []FieldError
	for _, f := range m.Fields {
		value, present := raw[f.Name]
		if present {
			out.provided[f.Name] = true
		}
		if value == nil {
			if f.needsValue() {
				missing = append(missing, FieldError{Kind: MissingRequired, Field: f.Name, Reason: "is required"})
			}
			continue
		}
		if f.Validate == nil {
			out.values[f.Name] = value
			continue
		}
		normalized, err := f.Validate(value)
		if err != nil {
			invalid = append(invalid, FieldError{Kind: InvalidValue, Field: f.Name, Reason: err.Error()})
			continue
		}
		out.values[f.Name] = normalized
	}

	if len(missing)+len(invalid) > 0 {
		return nil, &ValidationError{Model: m.Name, Errors: append(missing, invalid...)}
	}

	if m.Validate != nil {
		if err := m.Validate(out); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, ve
			}
			return nil, &ValidationError{Model: m.Name, Rule: err.Error()}
		}
	}
	return out, nil
}

// Unknown returns the keys of raw that no field of m declares, sorted.
func Unknown(m *Model, raw map[string]any) []string {
	declared := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		declared[f.Name] = true
	}
	var out []string
	for k := range raw {
		if !declared[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
