package schema

import (
	"fmt"

	"github.com/leengari/simpledb/internal/domain/errors"
)

// Schema is the ordered, immutable column layout of a table
type Schema struct {
	columns []Column
	index   map[string]int // column name → position
}

// NewSchema validates the column definitions and builds the name index.
// Column types may be given as any tag ParseColumnType accepts.
func NewSchema(columns []Column) (*Schema, error) {
	if len(columns) == 0 {
		return nil, errors.NewInvalidSchema("", "a table needs at least one column")
	}

	s := &Schema{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}

	for i, col := range columns {
		if col.Name == "" {
			return nil, errors.NewInvalidSchema("", fmt.Sprintf("column %d has no name", i))
		}
		if _, dup := s.index[col.Name]; dup {
			return nil, errors.NewInvalidSchema(col.Name, "duplicate column name")
		}

		colType, err := ParseColumnType(string(col.Type))
		if err != nil {
			return nil, errors.NewInvalidSchema(col.Name, fmt.Sprintf("unknown column type %q", col.Type))
		}

		s.columns[i] = Column{Name: col.Name, Type: colType}
		s.index[col.Name] = i
	}

	return s, nil
}

// Columns returns a copy of the column definitions in declaration order
func (s *Schema) Columns() []Column {
	cols := make([]Column, len(s.columns))
	copy(cols, s.columns)
	return cols
}

func (s *Schema) Len() int {
	return len(s.columns)
}

// Column returns the definition at position i
func (s *Schema) Column(i int) Column {
	return s.columns[i]
}

// Index resolves a column name to its position
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Equal reports whether both schemas declare the same columns in the same order
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || len(s.columns) != len(other.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != other.columns[i] {
			return false
		}
	}
	return true
}
