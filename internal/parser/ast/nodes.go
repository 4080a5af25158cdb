package ast

import (
	"bytes"
	"fmt"
	"strings"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	String() string
}

// Statement represents a standalone command (SELECT, INSERT, etc.)
type Statement interface {
	Node
	statementNode()
}

// Identifier represents a column, table or database name
type Identifier struct {
	TokenLiteralValue string // The token literal (e.g. "users")
	Value             string // The value (e.g. "users")
}

func (i *Identifier) TokenLiteral() string { return i.TokenLiteralValue }
func (i *Identifier) String() string       { return i.Value }

type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralInt
	LiteralFloat
)

// Literal represents a fixed value (string, number)
type Literal struct {
	TokenLiteralValue string
	Value             interface{} // string, int64, float64
	Kind              LiteralKind
}

func (l *Literal) TokenLiteral() string { return l.TokenLiteralValue }
func (l *Literal) String() string {
	if l.Kind == LiteralString {
		return "'" + strings.ReplaceAll(l.TokenLiteralValue, "'", "''") + "'"
	}
	return l.TokenLiteralValue
}

// Condition is one equality test: column = value
type Condition struct {
	Column *Identifier
	Value  *Literal
}

func (c *Condition) String() string {
	return fmt.Sprintf("%s = %s", c.Column.String(), c.Value.String())
}

// OrderBy: ORDER BY column [ASC|DESC]
type OrderBy struct {
	Column *Identifier
	Desc   bool
}

// SelectStatement: SELECT col1, col2 FROM table WHERE a = 1 OR b = 2 ORDER BY a DESC
type SelectStatement struct {
	Fields    []*Identifier // single "*" for every column
	Count     bool          // SELECT COUNT(*)
	TableName *Identifier
	Where     []*Condition // OR-joined
	OrderBy   *OrderBy
}

func (s *SelectStatement) statementNode()       {}
func (s *SelectStatement) TokenLiteral() string { return "SELECT" }
func (s *SelectStatement) String() string {
	var out bytes.Buffer
	out.WriteString("SELECT ")
	if s.Count {
		out.WriteString("COUNT(*)")
	}
	for i, f := range s.Fields {
		out.WriteString(f.String())
		if i < len(s.Fields)-1 {
			out.WriteString(", ")
		}
	}
	out.WriteString(" FROM ")
	out.WriteString(s.TableName.String())
	if len(s.Where) > 0 {
		out.WriteString(" WHERE ")
		for i, c := range s.Where {
			if i > 0 {
				out.WriteString(" OR ")
			}
			out.WriteString(c.String())
		}
	}
	if s.OrderBy != nil {
		out.WriteString(" ORDER BY ")
		out.WriteString(s.OrderBy.Column.String())
		if s.OrderBy.Desc {
			out.WriteString(" DESC")
		}
	}
	return out.String()
}

// InsertStatement: INSERT INTO table VALUES (val1, val2)
type InsertStatement struct {
	TableName *Identifier
	Values    []*Literal
}

func (s *InsertStatement) statementNode()       {}
func (s *InsertStatement) TokenLiteral() string { return "INSERT" }
func (s *InsertStatement) String() string {
	var out bytes.Buffer
	out.WriteString("INSERT INTO ")
	out.WriteString(s.TableName.String())
	out.WriteString(" VALUES (")
	for i, v := range s.Values {
		out.WriteString(v.String())
		if i < len(s.Values)-1 {
			out.WriteString(", ")
		}
	}
	out.WriteString(")")
	return out.String()
}

// ColumnDefinition: name TYPE
type ColumnDefinition struct {
	Name *Identifier
	Type string
}

// CreateTableStatement: CREATE TABLE name (col TYPE, ...)
type CreateTableStatement struct {
	TableName *Identifier
	Columns   []*ColumnDefinition
}

func (s *CreateTableStatement) statementNode()       {}
func (s *CreateTableStatement) TokenLiteral() string { return "CREATE" }
func (s *CreateTableStatement) String() string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.Name.String() + " " + c.Type
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", s.TableName.String(), strings.Join(cols, ", "))
}

// DescribeStatement: DESCRIBE table
type DescribeStatement struct {
	TableName *Identifier
}

func (s *DescribeStatement) statementNode()       {}
func (s *DescribeStatement) TokenLiteral() string { return "DESCRIBE" }
func (s *DescribeStatement) String() string       { return "DESCRIBE " + s.TableName.String() }

// CreateDatabaseStatement: CREATE DATABASE name
type CreateDatabaseStatement struct {
	Name string
}

func (s *CreateDatabaseStatement) statementNode()       {}
func (s *CreateDatabaseStatement) TokenLiteral() string { return "CREATE" }
func (s *CreateDatabaseStatement) String() string       { return "CREATE DATABASE " + s.Name }

// DropDatabaseStatement: DROP DATABASE name
type DropDatabaseStatement struct {
	Name string
}

func (s *DropDatabaseStatement) statementNode()       {}
func (s *DropDatabaseStatement) TokenLiteral() string { return "DROP" }
func (s *DropDatabaseStatement) String() string       { return "DROP DATABASE " + s.Name }

// UseDatabaseStatement: USE name
type UseDatabaseStatement struct {
	Name string
}

func (s *UseDatabaseStatement) statementNode()       {}
func (s *UseDatabaseStatement) TokenLiteral() string { return "USE" }
func (s *UseDatabaseStatement) String() string       { return "USE " + s.Name }

// ShowStatement: SHOW TABLES | SHOW DATABASES
type ShowStatement struct {
	Databases bool
}

func (s *ShowStatement) statementNode()       {}
func (s *ShowStatement) TokenLiteral() string { return "SHOW" }
func (s *ShowStatement) String() string {
	if s.Databases {
		return "SHOW DATABASES"
	}
	return "SHOW TABLES"
}
