package engine

import (
	stderrors "errors"
	"iter"
	"slices"

	"github.com/leengari/simpledb/internal/domain/data"
	"github.com/leengari/simpledb/internal/domain/errors"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/storage/loader"
	"github.com/leengari/simpledb/internal/storage/writer"
)

// Table is a named, schema-typed collection of rows persisted as one document
// in its database directory. Every mutation is written through immediately.
type Table struct {
	db     *Database
	name   string
	path   string // filesystem path to the table document
	schema *schema.Schema
	rows   []data.Row
}

// newTable loads the table document if one exists, otherwise declares the
// schema from columns and writes an empty document. An existing document's
// schema takes precedence over columns.
func newTable(db *Database, name string, columns []schema.Column) (*Table, error) {
	t := &Table{
		db:   db,
		name: name,
		path: loader.TablePath(db.path, name),
	}

	loaded, err := t.Load()
	if err != nil {
		return nil, err
	}
	if loaded {
		return t, nil
	}

	s, err := schema.NewSchema(columns)
	if err != nil {
		return nil, t.annotate(err)
	}
	t.schema = s

	if err := t.Save(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) Name() string {
	return t.name
}

// Path returns the location of the table document
func (t *Table) Path() string {
	return t.path
}

// Schema returns the table's immutable schema
func (t *Table) Schema() *schema.Schema {
	return t.schema
}

// Describe returns the column definitions
func (t *Table) Describe() []schema.Column {
	return t.schema.Columns()
}

// Count returns the number of rows currently held
func (t *Table) Count() int {
	return len(t.rows)
}

// Insert validates values against the schema, appends the row and persists
// the whole table. A rejected row leaves memory and disk untouched.
func (t *Table) Insert(values ...interface{}) error {
	row, err := data.NewRow(t.schema, values)
	if err != nil {
		return t.annotate(err)
	}

	t.rows = append(t.rows, row)

	if err := t.Save(); err != nil {
		t.rows = t.rows[:len(t.rows)-1]
		return err
	}

	t.db.notify(Event{Type: EventRowInserted, Table: t.name, Data: len(t.rows)})
	return nil
}

// All yields every row in insertion order
func (t *Table) All() iter.Seq[data.Row] {
	return func(yield func(data.Row) bool) {
		for _, row := range t.rows {
			if !yield(row) {
				return
			}
		}
	}
}

// Query yields, in table order, the rows matching ANY pair of pred
func (t *Table) Query(pred data.Predicate) iter.Seq[data.Row] {
	return func(yield func(data.Row) bool) {
		for _, row := range t.rows {
			if row.Matches(pred) && !yield(row) {
				return
			}
		}
	}
}

// SortedBy yields all rows ordered by column. The sort is stable in both
// directions, so ties keep insertion order even when reverse is set.
func (t *Table) SortedBy(column string, reverse bool) (iter.Seq[data.Row], error) {
	i, ok := t.schema.Index(column)
	if !ok {
		return nil, errors.NewUnknownColumn(t.name, column)
	}
	colType := t.schema.Column(i).Type

	return func(yield func(data.Row) bool) {
		sorted := slices.Clone(t.rows)
		slices.SortStableFunc(sorted, func(a, b data.Row) int {
			c := colType.Compare(a.At(i), b.At(i))
			if reverse {
				return -c
			}
			return c
		})

		for _, row := range sorted {
			if !yield(row) {
				return
			}
		}
	}, nil
}

// Load replaces the in-memory state with the table document on disk and
// registers the table with its database. It returns false, without error,
// when there is no document yet.
func (t *Table) Load() (bool, error) {
	lt, found, err := loader.LoadTable(t.path)
	if err != nil || !found {
		return false, err
	}
	t.adopt(lt)
	return true, nil
}

// Save overwrites the table document with the schema and every row
func (t *Table) Save() error {
	if err := writer.SaveTable(t.path, t.schema, t.rows); err != nil {
		return err
	}
	t.db.notify(Event{Type: EventTableSaved, Table: t.name, Data: len(t.rows)})
	return nil
}

func (t *Table) adopt(lt *loader.LoadedTable) {
	t.schema = lt.Schema
	t.rows = lt.Rows
	t.db.register(t)
	t.db.notify(Event{Type: EventTableLoaded, Table: t.name, Data: len(t.rows)})
}

// annotate stamps the table name on validation errors raised below the table
func (t *Table) annotate(err error) error {
	var ve *errors.ValidationError
	if stderrors.As(err, &ve) && ve.Table == "" {
		ve.Table = t.name
	}
	return err
}
