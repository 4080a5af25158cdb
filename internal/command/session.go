package command

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/leengari/simpledb/internal/domain/data"
	"github.com/leengari/simpledb/internal/domain/schema"
	"github.com/leengari/simpledb/internal/engine"
	"github.com/leengari/simpledb/internal/parser"
	"github.com/leengari/simpledb/internal/parser/ast"
	"github.com/leengari/simpledb/internal/storage/manager"
)

// Session interprets commands for one client. It remembers the database
// selected with USE; everything else lives in the shared registry.
type Session struct {
	ctx      context.Context
	registry *manager.Registry
	db       *engine.Database
}

// NewSession creates a session with no database selected
func NewSession(ctx context.Context, registry *manager.Registry) *Session {
	return &Session{ctx: ctx, registry: registry}
}

// Database returns the name of the selected database, or "" if none
func (s *Session) Database() string {
	if s.db == nil {
		return ""
	}
	return s.db.Name()
}

// Execute parses and runs one command. Commands from all sessions sharing
// a registry run one at a time.
func (s *Session) Execute(line string) (*Result, error) {
	stmt, err := parser.ParseString(line)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	var res *Result
	s.registry.Serialize(func() {
		res, err = s.execute(stmt)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("command executed", "statement", fmt.Sprintf("%T", stmt), "database", s.Database())
	return res, nil
}

func (s *Session) execute(stmt ast.Statement) (*Result, error) {
	switch st := stmt.(type) {
	case *ast.CreateDatabaseStatement:
		if _, err := s.registry.Create(s.ctx, st.Name); err != nil {
			return nil, err
		}
		return &Result{Message: fmt.Sprintf("Database '%s' created", st.Name)}, nil

	case *ast.DropDatabaseStatement:
		if s.db != nil && s.db.Name() == st.Name {
			s.db = nil
		}
		if err := s.registry.Drop(st.Name); err != nil {
			return nil, err
		}
		return &Result{Message: fmt.Sprintf("Database '%s' dropped", st.Name)}, nil

	case *ast.UseDatabaseStatement:
		return s.use(st.Name)

	case *ast.ShowStatement:
		if st.Databases {
			names, err := s.registry.List()
			if err != nil {
				return nil, err
			}
			return listResult("database", names), nil
		}
	}

	if s.db == nil {
		return nil, fmt.Errorf("no database selected. Use 'USE <database_name>' to select one")
	}

	switch st := stmt.(type) {
	case *ast.ShowStatement:
		return listResult("table", s.db.ListTables()), nil
	case *ast.CreateTableStatement:
		return s.createTable(st)
	case *ast.DescribeStatement:
		return s.describe(st)
	case *ast.InsertStatement:
		return s.insert(st)
	case *ast.SelectStatement:
		return s.selectRows(st)
	default:
		return nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

func (s *Session) use(name string) (*Result, error) {
	names, err := s.registry.List()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(names, name) {
		return nil, fmt.Errorf("database '%s' does not exist", name)
	}

	db, err := s.registry.Get(s.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load database '%s': %w", name, err)
	}
	s.db = db
	return &Result{Message: fmt.Sprintf("Switched to database '%s'", name)}, nil
}

func (s *Session) table(name string) (*engine.Table, error) {
	t, ok := s.db.Table(name)
	if !ok {
		return nil, fmt.Errorf("table not found: %s", name)
	}
	return t, nil
}

func (s *Session) createTable(st *ast.CreateTableStatement) (*Result, error) {
	cols := make([]schema.Column, len(st.Columns))
	for i, def := range st.Columns {
		cols[i] = schema.Column{Name: def.Name.Value, Type: schema.ColumnType(def.Type)}
	}

	t, err := s.db.CreateTable(st.TableName.Value, cols)
	if err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Table '%s' ready (%d rows)", t.Name(), t.Count())}, nil
}

func (s *Session) describe(st *ast.DescribeStatement) (*Result, error) {
	t, err := s.table(st.TableName.Value)
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: []string{"column", "type"}}
	for _, col := range t.Describe() {
		res.Rows = append(res.Rows, []interface{}{col.Name, string(col.Type)})
	}
	return res, nil
}

func (s *Session) insert(st *ast.InsertStatement) (*Result, error) {
	t, err := s.table(st.TableName.Value)
	if err != nil {
		return nil, err
	}

	cols := t.Describe()
	values := make([]interface{}, len(st.Values))
	for i, lit := range st.Values {
		if i < len(cols) {
			values[i] = literalValue(lit, cols[i])
		} else {
			values[i] = lit.Value
		}
	}

	if err := t.Insert(values...); err != nil {
		return nil, err
	}
	return &Result{Message: "1 row inserted"}, nil
}

func (s *Session) selectRows(st *ast.SelectStatement) (*Result, error) {
	t, err := s.table(st.TableName.Value)
	if err != nil {
		return nil, err
	}

	rows, err := s.rowSource(t, st)
	if err != nil {
		return nil, err
	}

	if st.Count {
		if st.Where == nil {
			return &Result{Columns: []string{"count"}, Types: []string{string(schema.ColumnTypeInt)}, Rows: [][]interface{}{{int64(t.Count())}}}, nil
		}
		var n int64
		for range rows {
			n++
		}
		return &Result{Columns: []string{"count"}, Types: []string{string(schema.ColumnTypeInt)}, Rows: [][]interface{}{{n}}}, nil
	}

	positions, err := project(t.Schema(), st.Fields)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, pos := range positions {
		col := t.Schema().Column(pos)
		res.Columns = append(res.Columns, col.Name)
		res.Types = append(res.Types, string(col.Type))
	}
	for row := range rows {
		res.Rows = append(res.Rows, renderRow(row, positions))
	}
	res.Message = fmt.Sprintf("Returned %d rows", len(res.Rows))
	return res, nil
}

// rowSource picks the table sequence a SELECT reads from
func (s *Session) rowSource(t *engine.Table, st *ast.SelectStatement) (iter.Seq[data.Row], error) {
	preds := buildPredicates(st.Where, t.Schema())

	if st.OrderBy == nil {
		switch {
		case st.Where == nil:
			return t.All(), nil
		case len(preds) == 1:
			return t.Query(preds[0]), nil
		}
		return filter(t.All(), preds), nil
	}

	sorted, err := t.SortedBy(st.OrderBy.Column.Value, st.OrderBy.Desc)
	if err != nil {
		return nil, err
	}
	if st.Where == nil {
		return sorted, nil
	}
	return filter(sorted, preds), nil
}

func filter(seq iter.Seq[data.Row], preds []data.Predicate) iter.Seq[data.Row] {
	return func(yield func(data.Row) bool) {
		for row := range seq {
			if matchesAny(row, preds) && !yield(row) {
				return
			}
		}
	}
}

func project(s *schema.Schema, fields []*ast.Identifier) ([]int, error) {
	if len(fields) == 1 && fields[0].Value == "*" {
		positions := make([]int, s.Len())
		for i := range positions {
			positions[i] = i
		}
		return positions, nil
	}

	positions := make([]int, len(fields))
	for i, f := range fields {
		pos, ok := s.Index(f.Value)
		if !ok {
			return nil, fmt.Errorf("unknown column: %s", f.Value)
		}
		positions[i] = pos
	}
	return positions, nil
}

func listResult(kind string, names []string) *Result {
	res := &Result{Columns: []string{kind}}
	for _, name := range names {
		res.Rows = append(res.Rows, []interface{}{name})
	}
	res.Message = fmt.Sprintf("%d %ss", len(names), kind)
	return res
}
