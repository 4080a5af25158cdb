package data

import (
	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/domain/schema"
)

// Row is one schema-conformant tuple of values, positionally aligned with its schema.
// Rows are immutable once built.
type Row struct {
	values []interface{}
	schema *schema.Schema
}

// Predicate maps column names to expected values
type Predicate map[string]interface{}

// NewRow validates arity and per-column types and returns the row with
// every value in its canonical form
func NewRow(s *schema.Schema, values []interface{}) (Row, error) {
	if len(values) != s.Len() {
		return Row{}, errors.NewArityMismatch("", len(values), s.Len())
	}

	canonical := make([]interface{}, len(values))
	for i, v := range values {
		col := s.Column(i)
		cv, ok := col.Type.Coerce(v)
		if !ok {
			return Row{}, errors.NewTypeMismatch("", col.Name, v, string(col.Type))
		}
		canonical[i] = cv
	}

	return Row{values: canonical, schema: s}, nil
}

// Schema returns the schema the row was validated against
func (r Row) Schema() *schema.Schema {
	return r.schema
}

// Values returns a copy of the ordered values
func (r Row) Values() []interface{} {
	vals := make([]interface{}, len(r.values))
	copy(vals, r.values)
	return vals
}

// Field returns the value stored under the named column
func (r Row) Field(name string) (interface{}, error) {
	i, ok := r.schema.Index(name)
	if !ok {
		return nil, &errors.ColumnNotFoundError{ColumnName: name}
	}
	return r.values[i], nil
}

// At returns the value at column position i
func (r Row) At(i int) interface{} {
	return r.values[i]
}

// Matches reports whether ANY of the predicate pairs equals the row's field.
// Unknown columns and values not convertible to the column type never match,
// so an empty predicate matches nothing. A whole-valued float matches an INT.
func (r Row) Matches(pred Predicate) bool {
	for name, want := range pred {
		i, ok := r.schema.Index(name)
		if !ok {
			continue
		}
		colType := r.schema.Column(i).Type
		cv, ok := colType.CoerceMatch(want)
		if !ok {
			continue
		}
		if colType.Equal(r.values[i], cv) {
			return true
		}
	}
	return false
}

// Equal compares two rows value for value
func (r Row) Equal(other Row) bool {
	if !r.schema.Equal(other.schema) || len(r.values) != len(other.values) {
		return false
	}
	for i := range r.values {
		if !r.schema.Column(i).Type.Equal(r.values[i], other.values[i]) {
			return false
		}
	}
	return true
}
