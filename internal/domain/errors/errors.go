package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Constraint names carried by ValidationError
const (
	ConstraintArity          = "arity"
	ConstraintTypeMismatch   = "type_mismatch"
	ConstraintUnknownColumn  = "unknown_column"
	ConstraintDatabaseExists = "database_exists"
	ConstraintInvalidSchema  = "invalid_schema"
	ConstraintInvalidName    = "invalid_name"
)

// ValidationError reports a caller input that violates the table or database contract
// (wrong insert arity, wrong field type, unknown sort column, duplicate database, bad schema)
type ValidationError struct {
	Table      string      // table name (empty for database-level errors)
	Column     string      // column name (empty if not column specific)
	Value      interface{} // offending value (may be nil)
	Constraint string      // one of the Constraint* names
	Reason     string      // human-readable explanation
}

func (e *ValidationError) Error() string {
	var parts []string

	subject := e.Table
	if e.Column != "" {
		if subject != "" {
			subject += "."
		}
		subject += e.Column
	}

	if subject != "" {
		parts = append(parts, fmt.Sprintf("validation failed for %s", subject))
	} else {
		parts = append(parts, "validation failed")
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Constraint))
	}

	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}

	return strings.Join(parts, " - ")
}

func NewArityMismatch(table string, given, expected int) *ValidationError {
	return &ValidationError{
		Table:      table,
		Constraint: ConstraintArity,
		Reason:     fmt.Sprintf("invalid amount of fields: given %d, expected %d", given, expected),
	}
}

func NewTypeMismatch(table, column string, value interface{}, expectedType string) *ValidationError {
	return &ValidationError{
		Table:      table,
		Column:     column,
		Value:      value,
		Constraint: ConstraintTypeMismatch,
		Reason:     fmt.Sprintf("invalid type of field %q: given %T, expected %s", column, value, expectedType),
	}
}

func NewUnknownColumn(table, column string) *ValidationError {
	return &ValidationError{
		Table:      table,
		Column:     column,
		Constraint: ConstraintUnknownColumn,
		Reason:     fmt.Sprintf("column %q does not exist", column),
	}
}

func NewDatabaseExists(name string) *ValidationError {
	return &ValidationError{
		Constraint: ConstraintDatabaseExists,
		Reason:     fmt.Sprintf("database with name %q already exists", name),
	}
}

func NewInvalidSchema(column, reason string) *ValidationError {
	return &ValidationError{
		Column:     column,
		Constraint: ConstraintInvalidSchema,
		Reason:     reason,
	}
}

func NewInvalidName(kind, name string) *ValidationError {
	return &ValidationError{
		Constraint: ConstraintInvalidName,
		Reason:     fmt.Sprintf("invalid %s name %q", kind, name),
	}
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// ColumnNotFoundError is returned by field lookups on a name the schema does not declare
type ColumnNotFoundError struct {
	TableName  string
	ColumnName string
}

func (e *ColumnNotFoundError) Error() string {
	if e.TableName == "" {
		return fmt.Sprintf("column '%s' not found", e.ColumnName)
	}
	return fmt.Sprintf("column '%s' not found in table '%s'", e.ColumnName, e.TableName)
}

// ParseError wraps a failure to decode a persisted table document
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse table file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
