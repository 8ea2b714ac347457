// Package schema binds raw JSON-shaped input to declared field schemas.
//
// A Model is an ordered list of Fields plus an optional cross-field check. Bind walks the
// fields in declaration order, records which ones the caller supplied, runs each field's
// validator on present non-null values, and returns every failure at once.
package schema

// Validator checks a present, non-null value and returns its normalized form
// (for example a parsed date or a typed id slice).
type Validator func(value any) (any, error)

// Presence fixes how a field treats absent and null values.
type Presence struct {
	Required bool
	Nullable bool
}

var (
	// Optional fields may be absent or null.
	Optional = Presence{Required: false, Nullable: true}
	// Required fields must carry a non-null value.
	Required = Presence{Required: true, Nullable: true}
	// NonNull fields must carry a non-null value and are declared non-nullable.
	NonNull = Presence{Required: true, Nullable: false}
)

// Field is a named constraint on one input value.
type Field struct {
	Name     string
	Required bool
	Nullable bool
	Validate Validator
}

// NewField declares a field with a custom validator.
func NewField(name string, p Presence, validate Validator) Field {
	return Field{
		Name:     name,
		Required: p.Required,
		Nullable: p.Nullable,
		Validate: validate,
	}
}

// needsValue reports whether an absent or null value is a MissingRequired failure.
func (f Field) needsValue() bool {
	return f.Required || !f.Nullable
}
